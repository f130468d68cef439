package harness

import "fmt"

// CableCategory distinguishes ordinary cables from loose wire bundles.
type CableCategory int

const (
	// CategoryNormal is a jacketed cable; part metadata applies to the
	// cable as a whole.
	CategoryNormal CableCategory = iota
	// CategoryBundle is a set of loose wires; part metadata may apply
	// per wire.
	CategoryBundle
)

// ParseCableCategory converts a config token to a CableCategory.
func ParseCableCategory(s string) (CableCategory, error) {
	switch s {
	case "", "cable", "normal":
		return CategoryNormal, nil
	case "bundle":
		return CategoryBundle, nil
	}
	return CategoryNormal, fmt.Errorf("unknown cable category: %q", s)
}

// Shield describes a cable shield: absent, plain (drawn as a thin black
// line), or colored (drawn as a colored bar).
type Shield struct {
	Present bool
	Color   string // color token; empty for a plain shield
}

// ShieldWire is the sentinel wire reference for connections routed through
// the cable shield, distinct from the 1-based wire indices.
const ShieldWire = 0

// Connection is one point-to-point link routed through a cable wire.
// An empty FromName or ToName leaves that end of the wire unattached.
type Connection struct {
	FromName string
	FromPin  string
	Wire     int // 1-based wire index, or ShieldWire
	ToName   string
	ToPin    string
}

// Cable is a physical part exposing a fixed set of wires, optionally with a
// shield, between two connector-facing ends.
//
// Colors and WireLabels are parallel lists; the wire count is the length of
// Colors and wire numbers are 1-based positions in it. WirePNs,
// WireManufacturers and WireMPNs carry per-wire part identities for
// bundle-category cables and are either empty or one entry per wire.
type Cable struct {
	Name  string
	Type  string
	Color string // jacket color token for the header swatch

	Colors     []string
	WireLabels []string

	Category CableCategory
	Shield   Shield

	Gauge     string
	GaugeUnit string
	ShowEquiv bool
	Length    float64 // metres; 0 = unspecified

	PN           string
	Manufacturer string
	MPN          string

	WirePNs           []string
	WireManufacturers []string
	WireMPNs          []string

	HideName        bool
	HideWireCount   bool
	HideWireNumbers bool

	Image   string
	Caption string
	Notes   string

	Connections []Connection
}

// WireCount returns the number of wires implied by the color list.
func (c *Cable) WireCount() int { return len(c.Colors) }

// WireLabel returns the label of the 1-based wire index, or "".
func (c *Cable) WireLabel(i int) string {
	if len(c.WireLabels) == 0 || i < 1 || i > len(c.WireLabels) {
		return ""
	}
	return c.WireLabels[i-1]
}

// WirePN returns the part number for the 1-based wire index, falling back to
// the cable-level part number.
func (c *Cable) WirePN(i int) string {
	if len(c.WirePNs) >= i && i >= 1 && c.WirePNs[i-1] != "" {
		return c.WirePNs[i-1]
	}
	return ""
}

// WireManufacturer returns the per-wire manufacturer for the 1-based wire
// index, or "".
func (c *Cable) WireManufacturer(i int) string {
	if len(c.WireManufacturers) >= i && i >= 1 {
		return c.WireManufacturers[i-1]
	}
	return ""
}

// WireMPN returns the per-wire manufacturer part number for the 1-based wire
// index, or "".
func (c *Cable) WireMPN(i int) string {
	if len(c.WireMPNs) >= i && i >= 1 {
		return c.WireMPNs[i-1]
	}
	return ""
}

// connect records a resolved connection on the cable.
func (c *Cable) connect(fromName, fromPin string, wire int, toName, toPin string) {
	c.Connections = append(c.Connections, Connection{
		FromName: fromName,
		FromPin:  fromPin,
		Wire:     wire,
		ToName:   toName,
		ToPin:    toPin,
	})
}

// validate checks parallel list lengths and wire references.
func (c *Cable) validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	n := len(c.Colors)
	if len(c.WireLabels) != 0 && len(c.WireLabels) != n {
		return fmt.Errorf("cable %s: wirelabels: %w", c.Name, ErrListMismatch)
	}
	for field, l := range map[string]int{
		"wire_pns":           len(c.WirePNs),
		"wire_manufacturers": len(c.WireManufacturers),
		"wire_mpns":          len(c.WireMPNs),
	} {
		if l != 0 && l != n {
			return fmt.Errorf("cable %s: %s: %w", c.Name, field, ErrListMismatch)
		}
	}
	return nil
}
