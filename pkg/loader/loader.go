// Package loader builds a harness model from a TOML description file.
//
// A description declares connectors and cables as named tables and wires them
// with an ordered list of connection entries:
//
//	color_mode = "short"
//
//	[connectors.X1]
//	pins = ["1", "2", "3"]
//	pinlabels = ["GND", "VCC", "RX"]
//
//	[cables.W1]
//	colors = ["RD", "BK"]
//	gauge = "0.25"
//	gauge_unit = "mm2"
//
//	[[connections]]
//	from = "X1:VCC"
//	via = "W1:RD"
//	to = "X2:1"
//
// Endpoint references are "name:pin" where the pin part may be a pin ID or a
// pin label. The via reference is "cable:wire" selecting a wire by number,
// color, label, or "s" for the shield, or one of the mate arrow glyphs
// (<--, -->, <->, <==, ==>, <=>). Declaration order in the file is preserved
// and defines diagram emission order.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tracewire/tracewire/pkg/colors"
	"github.com/tracewire/tracewire/pkg/harness"
)

// ErrBadReference reports a connection entry whose from/via/to token does not
// parse as "name:pin" or an arrow glyph.
var ErrBadReference = errors.New("malformed reference")

type document struct {
	ColorMode   string                  `toml:"color_mode"`
	MiniBOM     *bool                   `toml:"mini_bom"`
	Connectors  map[string]connectorDoc `toml:"connectors"`
	Cables      map[string]cableDoc     `toml:"cables"`
	Connections []connectionDoc         `toml:"connections"`
	BOM         []bomDoc                `toml:"bom"`
}

type connectorDoc struct {
	Type    string `toml:"type"`
	Subtype string `toml:"subtype"`
	Color   string `toml:"color"`

	Pins      []string `toml:"pins"`
	PinLabels []string `toml:"pinlabels"`
	PinColors []string `toml:"pincolors"`

	Style                string `toml:"style"`
	HideName             bool   `toml:"hide_name"`
	HidePinCount         bool   `toml:"hide_pincount"`
	HideDisconnectedPins bool   `toml:"hide_disconnected_pins"`

	PN           string `toml:"pn"`
	Manufacturer string `toml:"manufacturer"`
	MPN          string `toml:"mpn"`

	Image   string `toml:"image"`
	Caption string `toml:"caption"`
	Notes   string `toml:"notes"`

	Loops [][]string `toml:"loops"`
}

type cableDoc struct {
	Type  string `toml:"type"`
	Color string `toml:"color"`

	Colors     []string `toml:"colors"`
	WireLabels []string `toml:"wirelabels"`

	Category    string `toml:"category"`
	Shield      bool   `toml:"shield"`
	ShieldColor string `toml:"shield_color"`

	Gauge     string  `toml:"gauge"`
	GaugeUnit string  `toml:"gauge_unit"`
	ShowEquiv bool    `toml:"show_equivalent"`
	Length    float64 `toml:"length"`

	PN           string `toml:"pn"`
	Manufacturer string `toml:"manufacturer"`
	MPN          string `toml:"mpn"`

	WirePNs           []string `toml:"wire_pns"`
	WireManufacturers []string `toml:"wire_manufacturers"`
	WireMPNs          []string `toml:"wire_mpns"`

	HideName        bool `toml:"hide_name"`
	HideWireCount   bool `toml:"hide_wirecount"`
	HideWireNumbers bool `toml:"hide_wirenumbers"`

	Image   string `toml:"image"`
	Caption string `toml:"caption"`
	Notes   string `toml:"notes"`
}

type connectionDoc struct {
	From string `toml:"from"`
	Via  string `toml:"via"`
	To   string `toml:"to"`
}

type bomDoc struct {
	Description  string   `toml:"description"`
	Qty          float64  `toml:"qty"`
	Unit         string   `toml:"unit"`
	Designators  []string `toml:"designators"`
	PN           string   `toml:"pn"`
	Manufacturer string   `toml:"manufacturer"`
	MPN          string   `toml:"mpn"`
}

// Load reads and builds a harness from a TOML description file.
func Load(path string) (*harness.Harness, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// LoadBytes builds a harness from TOML description text.
func LoadBytes(data []byte) (*harness.Harness, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse description: %w", err)
	}

	h := harness.New()
	if doc.ColorMode != "" {
		mode, err := colors.ParseMode(doc.ColorMode)
		if err != nil {
			return nil, err
		}
		h.ColorMode = mode
	}
	if doc.MiniBOM != nil {
		h.MiniBOMMode = *doc.MiniBOM
	}

	// The decoded maps lose file order; recover it from the metadata keys.
	for _, name := range declarationOrder(md, "connectors") {
		c, err := buildConnector(name, doc.Connectors[name])
		if err != nil {
			return nil, err
		}
		if err := h.AddConnector(c); err != nil {
			return nil, err
		}
	}
	for _, name := range declarationOrder(md, "cables") {
		c, err := buildCable(name, doc.Cables[name])
		if err != nil {
			return nil, err
		}
		if err := h.AddCable(c); err != nil {
			return nil, err
		}
	}

	for i, conn := range doc.Connections {
		if err := applyConnection(h, conn); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i+1, err)
		}
	}

	for _, item := range doc.BOM {
		h.AddBOMItem(harness.BOMRow{
			Description:  item.Description,
			Qty:          item.Qty,
			Unit:         item.Unit,
			Designators:  item.Designators,
			PN:           item.PN,
			Manufacturer: item.Manufacturer,
			MPN:          item.MPN,
		})
	}

	return h, nil
}

// declarationOrder extracts the sub-table names under section in file order.
func declarationOrder(md toml.MetaData, section string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) >= 2 && key[0] == section && !seen[key[1]] {
			seen[key[1]] = true
			names = append(names, key[1])
		}
	}
	return names
}

func buildConnector(name string, d connectorDoc) (harness.Connector, error) {
	style, err := harness.ParseConnectorStyle(d.Style)
	if err != nil {
		return harness.Connector{}, fmt.Errorf("connector %s: %w", name, err)
	}
	loops := make([]harness.Loop, 0, len(d.Loops))
	for _, l := range d.Loops {
		if len(l) != 2 {
			return harness.Connector{}, fmt.Errorf("connector %s: loop %v: want two pins", name, l)
		}
		loops = append(loops, harness.Loop{First: l[0], Second: l[1]})
	}
	return harness.Connector{
		Name:                 name,
		Type:                 d.Type,
		Subtype:              d.Subtype,
		Color:                d.Color,
		Pins:                 d.Pins,
		PinLabels:            d.PinLabels,
		PinColors:            d.PinColors,
		Style:                style,
		HideName:             d.HideName,
		HidePinCount:         d.HidePinCount,
		HideDisconnectedPins: d.HideDisconnectedPins,
		PN:                   d.PN,
		Manufacturer:         d.Manufacturer,
		MPN:                  d.MPN,
		Image:                d.Image,
		Caption:              d.Caption,
		Notes:                d.Notes,
		Loops:                loops,
	}, nil
}

func buildCable(name string, d cableDoc) (harness.Cable, error) {
	category, err := harness.ParseCableCategory(d.Category)
	if err != nil {
		return harness.Cable{}, fmt.Errorf("cable %s: %w", name, err)
	}
	shield := harness.Shield{Present: d.Shield || d.ShieldColor != "", Color: d.ShieldColor}
	return harness.Cable{
		Name:              name,
		Type:              d.Type,
		Color:             d.Color,
		Colors:            d.Colors,
		WireLabels:        d.WireLabels,
		Category:          category,
		Shield:            shield,
		Gauge:             d.Gauge,
		GaugeUnit:         d.GaugeUnit,
		ShowEquiv:         d.ShowEquiv,
		Length:            d.Length,
		PN:                d.PN,
		Manufacturer:      d.Manufacturer,
		MPN:               d.MPN,
		WirePNs:           d.WirePNs,
		WireManufacturers: d.WireManufacturers,
		WireMPNs:          d.WireMPNs,
		HideName:          d.HideName,
		HideWireCount:     d.HideWireCount,
		HideWireNumbers:   d.HideWireNumbers,
		Image:             d.Image,
		Caption:           d.Caption,
		Notes:             d.Notes,
	}, nil
}

func applyConnection(h *harness.Harness, d connectionDoc) error {
	fromName, fromPin, err := splitEndpoint(d.From)
	if err != nil {
		return err
	}
	toName, toPin, err := splitEndpoint(d.To)
	if err != nil {
		return err
	}

	if _, _, ok := harness.ParseArrow(d.Via); ok {
		return h.Connect(fromName, fromPin, d.Via, "", toName, toPin)
	}

	viaName, viaWire, found := strings.Cut(d.Via, ":")
	if !found || viaName == "" || viaWire == "" {
		return fmt.Errorf("via %q: %w", d.Via, ErrBadReference)
	}
	return h.Connect(fromName, fromPin, viaName, viaWire, toName, toPin)
}

// splitEndpoint parses "name:pin". The empty string is a valid unattached
// endpoint.
func splitEndpoint(ref string) (name, pin string, err error) {
	if ref == "" {
		return "", "", nil
	}
	name, pin, found := strings.Cut(ref, ":")
	if !found || name == "" || pin == "" {
		return "", "", fmt.Errorf("endpoint %q: %w", ref, ErrBadReference)
	}
	return name, pin, nil
}
