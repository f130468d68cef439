package harness

import "fmt"

// ConnectorStyle selects how a connector node is drawn.
type ConnectorStyle int

const (
	// StyleFull draws the connector with its per-pin table.
	StyleFull ConnectorStyle = iota
	// StyleSimple draws a plain box without pin cells; edges attach to the
	// node itself.
	StyleSimple
)

// ParseConnectorStyle converts a config token to a ConnectorStyle.
func ParseConnectorStyle(s string) (ConnectorStyle, error) {
	switch s {
	case "", "full":
		return StyleFull, nil
	case "simple":
		return StyleSimple, nil
	}
	return StyleFull, fmt.Errorf("unknown connector style: %q", s)
}

// Loop is an internal bridge between two pins of the same connector, drawn
// as a same-side self edge.
type Loop struct {
	First  string
	Second string
}

// Connector is a physical part with an ordered, fixed set of pins.
//
// Pins, PinLabels and PinColors are parallel lists: PinLabels and PinColors
// are either empty or exactly as long as Pins. Display flags are inverted
// from their config counterparts so the zero value shows everything.
type Connector struct {
	Name    string
	Type    string
	Subtype string
	Color   string // color token for the header swatch

	Pins      []string
	PinLabels []string
	PinColors []string

	HideName             bool
	HidePinCount         bool
	Style                ConnectorStyle
	HideDisconnectedPins bool

	PN           string
	Manufacturer string
	MPN          string

	Image   string
	Caption string
	Notes   string

	Loops []Loop

	// Derived state, managed by the registry and the diagram compiler.
	PortsLeft  bool
	PortsRight bool

	visible map[string]bool
}

// PinCount returns the number of declared pins.
func (c *Connector) PinCount() int { return len(c.Pins) }

// ActivatePin marks a pin as connected so it survives
// HideDisconnectedPins filtering.
func (c *Connector) ActivatePin(pin string) {
	if c.visible == nil {
		c.visible = make(map[string]bool)
	}
	c.visible[pin] = true
}

// PinVisible reports whether the pin has been activated by a connection.
func (c *Connector) PinVisible(pin string) bool { return c.visible[pin] }

// PinLabel returns the label declared for the given pin ID, or "".
func (c *Connector) PinLabel(pin string) string {
	if len(c.PinLabels) == 0 {
		return ""
	}
	for i, p := range c.Pins {
		if p == pin {
			return c.PinLabels[i]
		}
	}
	return ""
}

// PinColor returns the color token declared for the given pin ID, or "".
func (c *Connector) PinColor(pin string) string {
	if len(c.PinColors) == 0 {
		return ""
	}
	for i, p := range c.Pins {
		if p == pin {
			return c.PinColors[i]
		}
	}
	return ""
}

// validate checks pin uniqueness and parallel list lengths.
func (c *Connector) validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	seen := make(map[string]bool, len(c.Pins))
	for _, p := range c.Pins {
		if seen[p] {
			return fmt.Errorf("connector %s: pin %q: %w", c.Name, p, ErrDuplicatePin)
		}
		seen[p] = true
	}
	if len(c.PinLabels) != 0 && len(c.PinLabels) != len(c.Pins) {
		return fmt.Errorf("connector %s: pinlabels: %w", c.Name, ErrListMismatch)
	}
	if len(c.PinColors) != 0 && len(c.PinColors) != len(c.Pins) {
		return fmt.Errorf("connector %s: pincolors: %w", c.Name, ErrListMismatch)
	}
	for _, l := range c.Loops {
		if !seen[l.First] {
			return &PinNotFoundError{Connector: c.Name, Token: l.First}
		}
		if !seen[l.Second] {
			return &PinNotFoundError{Connector: c.Name, Token: l.Second}
		}
	}
	return nil
}
