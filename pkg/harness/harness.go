// Package harness holds the in-memory model of a wiring harness: connectors,
// cables, mates, and the registry that validates and records point-to-point
// connections between them.
//
// The model is built once by a front-end (see pkg/loader), wired via
// [Harness.Connect], and then read by the diagram compiler (pkg/diagram) and
// the BOM aggregator (pkg/bom). It is not safe for concurrent mutation; the
// declaration phase is single-writer, the output phase read-only.
package harness

import (
	"fmt"

	"github.com/tracewire/tracewire/pkg/colors"
)

// BOMRow is one line of a bill of materials: a described part with a
// quantity and the set of designators (component names) that reference it.
// The same shape is used for ad-hoc items declared on the harness.
type BOMRow struct {
	Description  string
	Qty          float64
	Unit         string // empty = pieces
	Designators  []string
	PN           string
	Manufacturer string
	MPN          string
}

// Harness is the owned aggregate of a complete harness description.
// Connectors and cables keep their declaration order, which also defines
// diagram emission order.
type Harness struct {
	ColorMode   colors.Mode
	MiniBOMMode bool

	connectors     map[string]*Connector
	connectorOrder []string
	cables         map[string]*Cable
	cableOrder     []string

	MatesPin       []MatePin
	MatesComponent []MateComponent

	AdditionalBOMItems []BOMRow

	bom      []BOMRow
	bomValid bool
}

// New creates an empty harness with default rendering settings.
func New() *Harness {
	return &Harness{
		ColorMode:   colors.ModeShort,
		MiniBOMMode: true,
		connectors:  make(map[string]*Connector),
		cables:      make(map[string]*Cable),
	}
}

// AddConnector validates and registers a connector. Names must be unique
// across connectors.
func (h *Harness) AddConnector(c Connector) error {
	if err := c.validate(); err != nil {
		return err
	}
	if _, ok := h.connectors[c.Name]; ok {
		return fmt.Errorf("connector %s: %w", c.Name, ErrDuplicateName)
	}
	h.connectors[c.Name] = &c
	h.connectorOrder = append(h.connectorOrder, c.Name)
	h.invalidateBOM()
	return nil
}

// AddCable validates and registers a cable. Names must be unique across
// cables.
func (h *Harness) AddCable(c Cable) error {
	if err := c.validate(); err != nil {
		return err
	}
	if _, ok := h.cables[c.Name]; ok {
		return fmt.Errorf("cable %s: %w", c.Name, ErrDuplicateName)
	}
	h.cables[c.Name] = &c
	h.cableOrder = append(h.cableOrder, c.Name)
	h.invalidateBOM()
	return nil
}

// AddBOMItem appends a free-form part to the bill of materials.
func (h *Harness) AddBOMItem(item BOMRow) {
	if item.Qty == 0 {
		item.Qty = 1
	}
	h.AdditionalBOMItems = append(h.AdditionalBOMItems, item)
	h.invalidateBOM()
}

// Connector returns the connector declared under name.
func (h *Harness) Connector(name string) (*Connector, bool) {
	c, ok := h.connectors[name]
	return c, ok
}

// Cable returns the cable declared under name.
func (h *Harness) Cable(name string) (*Cable, bool) {
	c, ok := h.cables[name]
	return c, ok
}

// Connectors returns all connectors in declaration order.
func (h *Harness) Connectors() []*Connector {
	out := make([]*Connector, len(h.connectorOrder))
	for i, name := range h.connectorOrder {
		out[i] = h.connectors[name]
	}
	return out
}

// Cables returns all cables in declaration order.
func (h *Harness) Cables() []*Cable {
	out := make([]*Cable, len(h.cableOrder))
	for i, name := range h.cableOrder {
		out[i] = h.cables[name]
	}
	return out
}

// Connect validates and records a link from fromName:fromPin to
// toName:toPin. The via token is either a mate arrow glyph (<--, -->, <->,
// <==, ==>, <=>) or the name of a declared cable, in which case viaWire
// selects a wire by number, color, label, or "s" for the shield.
//
// Pin tokens on declared connectors may be pin IDs or pin labels; labels are
// rewritten to pin IDs. All validation happens before any state is mutated.
func (h *Harness) Connect(fromName, fromPin, viaName, viaWire, toName, toPin string) error {
	// Resolve both endpoint pins first.
	var err error
	if fromPin, err = h.resolveEndpoint(fromName, fromPin); err != nil {
		return err
	}
	if toPin, err = h.resolveEndpoint(toName, toPin); err != nil {
		return err
	}

	if kind, dir, ok := ParseArrow(viaName); ok {
		h.recordMate(kind, dir, fromName, fromPin, toName, toPin)
		return nil
	}

	cable, ok := h.cables[viaName]
	if !ok {
		return fmt.Errorf("%s: %w", viaName, ErrUnknownCable)
	}
	res := resolveWire(cable, viaWire)
	switch res.kind {
	case ambiguous:
		return &AmbiguousReferenceError{Component: viaName, Token: viaWire}
	case duplicateLabel:
		return &DuplicateLabelError{Component: viaName, Token: viaWire}
	case notFound:
		return &WireNotFoundError{Cable: viaName, Token: viaWire}
	}

	cable.connect(fromName, fromPin, res.index, toName, toPin)
	if c, ok := h.connectors[fromName]; ok {
		c.ActivatePin(fromPin)
	}
	if c, ok := h.connectors[toName]; ok {
		c.ActivatePin(toPin)
	}
	h.invalidateBOM()
	return nil
}

// resolveEndpoint rewrites a pin token on a declared connector to a pin ID.
// Endpoints with an empty name (unattached cable ends) and names that are
// not declared connectors pass through unchanged.
func (h *Harness) resolveEndpoint(name, pin string) (string, error) {
	if name == "" {
		return pin, nil
	}
	c, ok := h.connectors[name]
	if !ok {
		return pin, nil
	}
	res := resolvePin(c, pin)
	switch res.kind {
	case ambiguous:
		return "", &AmbiguousReferenceError{Component: name, Token: pin}
	case duplicateLabel:
		return "", &DuplicateLabelError{Component: name, Token: pin}
	case notFound:
		return "", &PinNotFoundError{Connector: name, Token: pin}
	}
	return res.id, nil
}

// recordMate appends a mate for an arrow-glyph connection. Pin-level mates
// carry their endpoint pins; component-level mates pair whole components.
func (h *Harness) recordMate(kind MateKind, dir MateDirection, fromName, fromPin, toName, toPin string) {
	switch kind {
	case MatePinLevel:
		h.MatesPin = append(h.MatesPin, MatePin{
			FromName: fromName, FromPin: fromPin,
			ToName: toName, ToPin: toPin,
			Dir: dir,
		})
	case MateComponentLevel:
		h.MatesComponent = append(h.MatesComponent, MateComponent{
			FromName: fromName, ToName: toName, Dir: dir,
		})
	}
	h.invalidateBOM()
}

// BOMCache returns the memoized bill of materials, if valid.
func (h *Harness) BOMCache() ([]BOMRow, bool) {
	if !h.bomValid {
		return nil, false
	}
	return h.bom, true
}

// SetBOMCache memoizes an aggregated bill of materials on the harness.
// The cache stays valid until the next mutating call.
func (h *Harness) SetBOMCache(rows []BOMRow) {
	h.bom = rows
	h.bomValid = true
}

func (h *Harness) invalidateBOM() {
	h.bom = nil
	h.bomValid = false
}
