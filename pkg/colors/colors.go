// Package colors resolves symbolic wire-color tokens into display strings
// and hex codes.
//
// A token is either a raw hex string ("#ff8800"), a single two-letter code
// ("RD"), or a concatenation of two-letter codes describing a striped wire
// ("WHBN" = white with a brown stripe). Tokens with exactly two colors expand
// to three stripes (A-B-A) so the stripe is bounded by the base color on both
// sides, matching how such wires look physically.
package colors

import (
	"fmt"
	"strings"
)

// Mode controls how Translate renders a color token.
type Mode int

const (
	// ModeShort renders the token as its two-letter code(s), e.g. "WHBN".
	ModeShort Mode = iota
	// ModeFull renders full color names joined with "/", e.g. "white/brown".
	ModeFull
	// ModeHex renders hex codes joined with ":", e.g. "#ffffff:#895956".
	ModeHex
)

// String returns the lowercase mode name as used in config files.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeHex:
		return "hex"
	default:
		return "short"
	}
}

// ParseMode converts a config token to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "short":
		return ModeShort, nil
	case "full":
		return ModeFull, nil
	case "hex":
		return ModeHex, nil
	}
	return ModeShort, fmt.Errorf("unknown color mode: %q", s)
}

// DefaultHex is used for empty color tokens so that a wire without a declared
// color still renders as a visible bar.
const DefaultHex = "#ffffff"

// hexCodes maps two-letter color codes to hex values.
var hexCodes = map[string]string{
	"BK": "#000000",
	"WH": "#ffffff",
	"GY": "#999999",
	"PK": "#ff66cc",
	"RD": "#ff0000",
	"OG": "#ff8000",
	"YE": "#ffff00",
	"OL": "#708000",
	"GN": "#00ff00",
	"TQ": "#00ffff",
	"LB": "#a0dfff",
	"BU": "#0066ff",
	"VT": "#8000ff",
	"BN": "#895956",
	"BG": "#ceb673",
	"IV": "#f5f0d0",
	"SL": "#708090",
	"CU": "#d6775e",
	"SN": "#aaaaaa",
	"SR": "#84878c",
	"GD": "#ffcf80",
}

// fullNames maps two-letter color codes to full names.
var fullNames = map[string]string{
	"BK": "black",
	"WH": "white",
	"GY": "grey",
	"PK": "pink",
	"RD": "red",
	"OG": "orange",
	"YE": "yellow",
	"OL": "olive green",
	"GN": "green",
	"TQ": "turquoise",
	"LB": "light blue",
	"BU": "blue",
	"VT": "violet",
	"BN": "brown",
	"BG": "beige",
	"IV": "ivory",
	"SL": "slate",
	"CU": "copper",
	"SN": "tin",
	"SR": "silver",
	"GD": "gold",
}

// UnknownColorError reports a token outside the recognized palette that is
// not a raw hex passthrough.
type UnknownColorError struct {
	Token string
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("unknown color: %q", e.Token)
}

// IsHex reports whether the token is a raw hex string passed through as-is.
func IsHex(token string) bool {
	return strings.HasPrefix(token, "#")
}

// split breaks a multi-color token into its two-letter codes.
// Returns an UnknownColorError for odd-length tokens or unrecognized codes.
func split(token string) ([]string, error) {
	if len(token) == 0 || len(token)%2 != 0 {
		return nil, &UnknownColorError{Token: token}
	}
	codes := make([]string, 0, len(token)/2)
	for i := 0; i < len(token); i += 2 {
		code := strings.ToUpper(token[i : i+2])
		if _, ok := hexCodes[code]; !ok {
			return nil, &UnknownColorError{Token: token}
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Translate renders a color token under the given verbosity mode.
// Empty tokens translate to the empty string.
func Translate(token string, mode Mode) (string, error) {
	if token == "" {
		return "", nil
	}
	if IsHex(token) {
		return token, nil
	}
	codes, err := split(token)
	if err != nil {
		return "", err
	}
	switch mode {
	case ModeFull:
		names := make([]string, len(codes))
		for i, c := range codes {
			names[i] = fullNames[c]
		}
		return strings.Join(names, "/"), nil
	case ModeHex:
		stripes, err := Hex(token)
		if err != nil {
			return "", err
		}
		return strings.Join(stripes, ":"), nil
	default:
		return strings.Join(codes, ""), nil
	}
}

// Hex expands a color token to its stripe sequence of hex codes.
// Single colors yield one stripe; exactly two colors yield the three-stripe
// A-B-A pattern; longer tokens yield one stripe per code. Empty tokens yield
// a single DefaultHex stripe.
func Hex(token string) ([]string, error) {
	if token == "" {
		return []string{DefaultHex}, nil
	}
	if IsHex(token) {
		return []string{token}, nil
	}
	codes, err := split(token)
	if err != nil {
		return nil, err
	}
	if len(codes) == 2 {
		return []string{hexCodes[codes[0]], hexCodes[codes[1]], hexCodes[codes[0]]}, nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = hexCodes[c]
	}
	return out, nil
}

// PadStripes widens a stripe sequence to n entries so that wires with
// different stripe counts render at equal thickness. Single-color sequences
// repeat their color; multi-color sequences repeat their final stripe.
// Sequences already at least n stripes wide are returned unchanged.
func PadStripes(stripes []string, n int) []string {
	if len(stripes) >= n {
		return stripes
	}
	out := make([]string, 0, n)
	out = append(out, stripes...)
	for len(out) < n {
		if len(stripes) == 1 {
			out = append(out, stripes[0])
		} else {
			out = append(out, stripes[len(stripes)-1])
		}
	}
	return out
}

// Known reports whether the token resolves in the palette (or is raw hex).
func Known(token string) bool {
	if token == "" || IsHex(token) {
		return true
	}
	_, err := split(token)
	return err == nil
}
