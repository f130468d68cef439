package harness

import "strconv"

// resolutionKind tags the outcome of resolving a pin or wire token.
type resolutionKind int

const (
	resolved resolutionKind = iota
	ambiguous
	duplicateLabel
	notFound
)

// resolution is the tagged result of a token lookup. For pins, id carries
// the resolved pin ID; for wires, index carries the resolved 1-based wire
// number.
type resolution struct {
	kind  resolutionKind
	id    string
	index int
}

// resolvePin maps a token to a pin ID. A token that is already a pin ID
// resolves to itself; a token matching a pin label uniquely is rewritten to
// the corresponding pin ID. A token present in both lists for different
// positions is ambiguous; a label matching several positions is a duplicate.
func resolvePin(c *Connector, token string) resolution {
	pinIdx := indexOf(c.Pins, token)
	labelIdx := indexOf(c.PinLabels, token)

	if pinIdx >= 0 && labelIdx >= 0 && pinIdx != labelIdx {
		return resolution{kind: ambiguous}
	}
	if labelIdx >= 0 {
		if count(c.PinLabels, token) > 1 {
			return resolution{kind: duplicateLabel}
		}
		return resolution{kind: resolved, id: c.Pins[labelIdx], index: labelIdx + 1}
	}
	if pinIdx >= 0 {
		return resolution{kind: resolved, id: token, index: pinIdx + 1}
	}
	return resolution{kind: notFound}
}

// resolveWire maps a token to a 1-based wire index. Accepted tokens are a
// wire number, a color, a wire label, or "s" for the shield (resolving to
// ShieldWire). Color-vs-label ambiguity and duplicate matches fail the same
// way pin resolution does.
func resolveWire(c *Cable, token string) resolution {
	if token == "s" && c.Shield.Present {
		return resolution{kind: resolved, index: ShieldWire}
	}
	if n, err := strconv.Atoi(token); err == nil {
		if n >= 1 && n <= c.WireCount() {
			return resolution{kind: resolved, index: n}
		}
		return resolution{kind: notFound}
	}

	colorIdx := indexOf(c.Colors, token)
	labelIdx := indexOf(c.WireLabels, token)

	if colorIdx >= 0 && labelIdx >= 0 && colorIdx != labelIdx {
		return resolution{kind: ambiguous}
	}
	if colorIdx >= 0 {
		if count(c.Colors, token) > 1 {
			return resolution{kind: duplicateLabel}
		}
		return resolution{kind: resolved, index: colorIdx + 1}
	}
	if labelIdx >= 0 {
		if count(c.WireLabels, token) > 1 {
			return resolution{kind: duplicateLabel}
		}
		return resolution{kind: resolved, index: labelIdx + 1}
	}
	return resolution{kind: notFound}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func count(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}
