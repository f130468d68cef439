package diagram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tracewire/tracewire/pkg/bom"
	"github.com/tracewire/tracewire/pkg/colors"
	"github.com/tracewire/tracewire/pkg/harness"
)

const fontName = "arial"

// loopEdgeColor is the fixed three-stripe style distinguishing internal
// bridges from data wires.
const loopEdgeColor = "#000000:#ffffff:#000000"

// NoPortSideError reports a loop on a connector with neither left nor right
// ports active; there is no side to draw the loop on.
type NoPortSideError struct {
	Connector string
}

func (e *NoPortSideError) Error() string {
	return fmt.Sprintf("connector %s: loop declared but no port side is in use", e.Connector)
}

// Compile walks the validated model and emits the abstract diagram graph.
//
// Pass one infers which port side(s) each connector needs from the recorded
// cable connections and pin mates. Pass two emits one node per connector and
// cable (with nested-table labels) and one edge per wire attachment, loop,
// and pin-level mate. Component-level mates are cross-references only and
// are not drawn.
func Compile(h *harness.Harness) (*Graph, error) {
	g := &Graph{
		Comments: []string{"Graph generated by tracewire", "https://github.com/tracewire/tracewire"},
		GraphAttrs: []Attr{
			{"rankdir", "LR"},
			{"ranksep", "2"},
			{"bgcolor", "white"},
			{"nodesep", "0.33"},
			{"fontname", fontName},
		},
		NodeAttrs: []Attr{
			{"shape", "record"},
			{"style", "filled"},
			{"fillcolor", "white"},
			{"fontname", fontName},
		},
		EdgeAttrs: []Attr{
			{"style", "bold"},
			{"fontname", fontName},
		},
	}

	inferPortSides(h)

	var bomRows []harness.BOMRow
	if h.MiniBOMMode {
		bomRows = bom.Build(h)
	}

	for _, conn := range h.Connectors() {
		node, err := connectorNode(h, conn, bomRows)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, node)

		loops, err := loopEdges(conn)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, loops...)
	}

	for _, cable := range h.Cables() {
		node, edges, err := cableElements(h, cable, bomRows)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, edges...)
	}

	g.Edges = append(g.Edges, mateEdges(h)...)
	return g, nil
}

// inferPortSides derives each connector's port sides from the wiring: a
// connector feeding a cable gets right ports, a connector fed by one gets
// left ports. Pin mates force sides and activate their pins.
func inferPortSides(h *harness.Harness) {
	for _, c := range h.Connectors() {
		c.PortsLeft = false
		c.PortsRight = false
	}
	for _, cable := range h.Cables() {
		for _, conn := range cable.Connections {
			if conn.FromName != "" {
				if c, ok := h.Connector(conn.FromName); ok {
					c.PortsRight = true
				}
			}
			if conn.ToName != "" {
				if c, ok := h.Connector(conn.ToName); ok {
					c.PortsLeft = true
				}
			}
		}
	}
	for _, m := range h.MatesPin {
		if c, ok := h.Connector(m.FromName); ok {
			c.PortsRight = true
			c.ActivatePin(m.FromPin)
		}
		if c, ok := h.Connector(m.ToName); ok {
			c.PortsLeft = true
			c.ActivatePin(m.ToPin)
		}
	}
}

// manufacturerInfo formats the manufacturer/MPN header field.
func manufacturerInfo(manufacturer, mpn string) string {
	var parts []string
	if manufacturer != "" {
		parts = append(parts, manufacturer)
	}
	if mpn != "" {
		parts = append(parts, "MPN: "+mpn)
	}
	return strings.Join(parts, ", ")
}

// colorbarCell builds the header color swatch for a component jacket color.
func colorbarCell(token string) (Cell, error) {
	if token == "" {
		return Cell{}, nil
	}
	hex, err := colors.Translate(token, colors.ModeHex)
	if err != nil {
		return Cell{}, err
	}
	return Cell{BGColor: hex, Width: 4}, nil
}

func connectorNode(h *harness.Harness, c *harness.Connector, bomRows []harness.BOMRow) (Node, error) {
	var rows []Row

	if !c.HideName {
		rows = append(rows, headerRow(Cell{Text: Escape(c.Name)}))
	}

	var pn Cell
	if c.PN != "" {
		pn = Cell{Text: "P/N: " + Escape(c.PN)}
	}
	rows = append(rows, headerRow(pn, Cell{Text: LineBreaks(manufacturerInfo(c.Manufacturer, c.MPN))}))

	pincount := ""
	if !c.HidePinCount && len(c.Pins) > 0 {
		pincount = fmt.Sprintf("%d-pin", len(c.Pins))
	}
	colorName, err := colors.Translate(c.Color, h.ColorMode)
	if err != nil {
		return Node{}, fmt.Errorf("connector %s: %w", c.Name, err)
	}
	colorbar, err := colorbarCell(c.Color)
	if err != nil {
		return Node{}, fmt.Errorf("connector %s: %w", c.Name, err)
	}
	rows = append(rows, headerRow(
		Cell{Text: LineBreaks(c.Type)},
		Cell{Text: LineBreaks(c.Subtype)},
		Cell{Text: pincount},
		Cell{Text: Escape(colorName)},
		colorbar,
	))

	if c.Style != harness.StyleSimple {
		pt, err := pinTable(c, h.ColorMode)
		if err != nil {
			return Node{}, err
		}
		rows = append(rows, Row{Cell{Nested: pt}})
	}

	rows = append(rows, imageRows(c.Image, c.Caption)...)
	rows = append(rows, miniBOMRow(h, bomRows, c.Name))
	if c.Notes != "" {
		rows = append(rows, headerRow(Cell{Text: LineBreaks(c.Notes)}))
	}

	return Node{
		Name:      c.Name,
		Label:     sectionTable(rows...),
		Shape:     "none",
		Style:     "filled",
		FillColor: "white",
		Margin:    "0",
	}, nil
}

// pinTable builds the embedded per-pin table: optional left port cell,
// label cell, color swatch cell pair, optional right port cell. Pins hidden
// by HideDisconnectedPins are skipped entirely.
func pinTable(c *harness.Connector, mode colors.Mode) (*Table, error) {
	t := &Table{Border: 0, CellSpacing: 0, CellPadding: 3, CellBorder: 1}

	for i, pin := range c.Pins {
		if c.HideDisconnectedPins && !c.PinVisible(pin) {
			continue
		}
		var row Row
		if c.PortsLeft {
			row = append(row, Cell{Port: "p" + pin + "l", Text: Escape(pin)})
		}
		if len(c.PinLabels) > 0 && c.PinLabels[i] != "" {
			row = append(row, Cell{Text: Escape(c.PinLabels[i])})
		}
		if len(c.PinColors) > 0 {
			pc := c.PinColors[i]
			if pc != "" && colors.Known(pc) {
				hex, err := colors.Translate(pc, colors.ModeHex)
				if err != nil {
					return nil, fmt.Errorf("connector %s: %w", c.Name, err)
				}
				swatch := &Table{Border: 0, CellSpacing: 0, CellPadding: 0, CellBorder: 1,
					Rows: []Row{{Cell{BGColor: hex, Width: 8, Height: 8, Fixed: true}}}}
				row = append(row,
					Cell{Text: Escape(pc), Sides: "tbl"},
					Cell{Sides: "tbr", Nested: swatch},
				)
			} else {
				row = append(row, Cell{Colspan: 2, Text: " "})
			}
		}
		if c.PortsRight {
			row = append(row, Cell{Port: "p" + pin + "r", Text: Escape(pin)})
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// loopEdges emits one same-side self edge per declared loop, on the left
// side when left ports are in use, otherwise the right.
func loopEdges(c *harness.Connector) ([]Edge, error) {
	if len(c.Loops) == 0 {
		return nil, nil
	}
	var side, compass string
	switch {
	case c.PortsLeft:
		side, compass = "l", "w"
	case c.PortsRight:
		side, compass = "r", "e"
	default:
		return nil, &NoPortSideError{Connector: c.Name}
	}
	edges := make([]Edge, 0, len(c.Loops))
	for _, l := range c.Loops {
		edges = append(edges, Edge{
			From:  Endpoint{Name: c.Name, Port: "p" + l.First + side, Compass: compass},
			To:    Endpoint{Name: c.Name, Port: "p" + l.Second + side, Compass: compass},
			Color: loopEdgeColor,
		})
	}
	return edges, nil
}

func imageRows(image, caption string) []Row {
	var rows []Row
	if image != "" {
		rows = append(rows, headerRow(Cell{Text: fmt.Sprintf(`<img scale="true" src="%s"/>`, image)}))
	}
	if caption != "" {
		rows = append(rows, headerRow(Cell{Text: LineBreaks(caption)}))
	}
	return rows
}

// miniBOMRow cross-references the component's BOM row by index when the
// part appears in the aggregated bill of materials.
func miniBOMRow(h *harness.Harness, bomRows []harness.BOMRow, designator string) Row {
	if !h.MiniBOMMode {
		return nil
	}
	for i, r := range bomRows {
		for _, d := range r.Designators {
			if d == designator {
				if r.PN == "" && r.MPN == "" {
					return nil
				}
				return headerRow(Cell{Text: fmt.Sprintf("BOM #%d", i+1)})
			}
		}
	}
	return nil
}

// wireEndpointText formats the far-endpoint annotation for a wire row:
// "name:pin" plus the pin label when one is declared.
func wireEndpointText(h *harness.Harness, name, pin string) string {
	if name == "" {
		return ""
	}
	c, ok := h.Connector(name)
	if !ok {
		return Escape(name + ":" + pin)
	}
	if c.HideName {
		return ""
	}
	parts := []string{name, pin}
	if l := c.PinLabel(pin); l != "" {
		parts = append(parts, l)
	}
	return Escape(strings.Join(parts, ":"))
}

// wirePort returns the cable-side port name for a wire index.
func wirePort(wire int) string {
	if wire == harness.ShieldWire {
		return "ws"
	}
	return "w" + strconv.Itoa(wire)
}

// connectorPort returns the connector-side port for an edge endpoint, empty
// for simple-style or undeclared connectors (the edge anchors to the node).
func connectorPort(h *harness.Harness, name, pin, side string) string {
	c, ok := h.Connector(name)
	if !ok || c.Style == harness.StyleSimple {
		return ""
	}
	return "p" + pin + side
}

func cableElements(h *harness.Harness, c *harness.Cable, bomRows []harness.BOMRow) (Node, []Edge, error) {
	// Expand every wire color once and find the widest stripe pattern; all
	// wires of the cable pad to it so mixed bundles align visually.
	stripes := make([][]string, c.WireCount())
	maxStripes := 1
	for i, tok := range c.Colors {
		s, err := colors.Hex(tok)
		if err != nil {
			return Node{}, nil, fmt.Errorf("cable %s wire %d: %w", c.Name, i+1, err)
		}
		stripes[i] = s
		if len(s) > maxStripes {
			maxStripes = len(s)
		}
	}

	var shieldHex string
	if c.Shield.Present && c.Shield.Color != "" {
		sh, err := colors.Hex(c.Shield.Color)
		if err != nil {
			return Node{}, nil, fmt.Errorf("cable %s shield: %w", c.Name, err)
		}
		shieldHex = sh[0]
	}

	// Far-endpoint annotations per wire slot; slot 0 is the shield.
	ins := make([]string, c.WireCount()+1)
	outs := make([]string, c.WireCount()+1)
	for _, conn := range c.Connections {
		slot := conn.Wire
		if conn.FromName != "" {
			ins[slot] = wireEndpointText(h, conn.FromName, conn.FromPin)
		}
		if conn.ToName != "" {
			outs[slot] = wireEndpointText(h, conn.ToName, conn.ToPin)
		}
	}

	node, err := cableNode(h, c, bomRows, stripes, maxStripes, shieldHex, ins, outs)
	if err != nil {
		return Node{}, nil, err
	}

	var edges []Edge
	for _, conn := range c.Connections {
		var color string
		if conn.Wire == harness.ShieldWire {
			if shieldHex != "" {
				color = "#000000:" + shieldHex + ":#000000"
			} else {
				color = "#000000"
			}
		} else {
			padded := colors.PadStripes(stripes[conn.Wire-1], maxStripes)
			color = "#000000:" + strings.Join(padded, ":") + ":#000000"
		}
		if conn.FromName != "" {
			edges = append(edges, Edge{
				From:  Endpoint{Name: conn.FromName, Port: connectorPort(h, conn.FromName, conn.FromPin, "r"), Compass: "e"},
				To:    Endpoint{Name: c.Name, Port: wirePort(conn.Wire), Compass: "w"},
				Color: color,
			})
		}
		if conn.ToName != "" {
			edges = append(edges, Edge{
				From:  Endpoint{Name: c.Name, Port: wirePort(conn.Wire), Compass: "e"},
				To:    Endpoint{Name: conn.ToName, Port: connectorPort(h, conn.ToName, conn.ToPin, "l"), Compass: "w"},
				Color: color,
			})
		}
	}

	return node, edges, nil
}

func cableNode(h *harness.Harness, c *harness.Cable, bomRows []harness.BOMRow,
	stripes [][]string, maxStripes int, shieldHex string, ins, outs []string) (Node, error) {

	var rows []Row
	if !c.HideName {
		rows = append(rows, headerRow(Cell{Text: Escape(c.Name)}))
	}

	var pn Cell
	if c.PN != "" {
		pn = Cell{Text: "P/N: " + Escape(c.PN)}
	}
	rows = append(rows, headerRow(pn, Cell{Text: LineBreaks(manufacturerInfo(c.Manufacturer, c.MPN))}))

	wirecount := ""
	if !c.HideWireCount {
		wirecount = fmt.Sprintf("%dx", c.WireCount())
	}
	gauge := ""
	if c.Gauge != "" {
		gauge = c.Gauge + " " + c.GaugeUnit + gaugeEquiv(c)
	}
	shield := ""
	if c.Shield.Present {
		shield = "+ S"
	}
	length := ""
	if c.Length > 0 {
		length = strconv.FormatFloat(c.Length, 'g', -1, 64) + " m"
	}
	colorName, err := colors.Translate(c.Color, h.ColorMode)
	if err != nil {
		return Node{}, fmt.Errorf("cable %s: %w", c.Name, err)
	}
	colorbar, err := colorbarCell(c.Color)
	if err != nil {
		return Node{}, fmt.Errorf("cable %s: %w", c.Name, err)
	}
	rows = append(rows, headerRow(
		Cell{Text: LineBreaks(c.Type)},
		Cell{Text: wirecount},
		Cell{Text: Escape(gauge)},
		Cell{Text: shield},
		Cell{Text: length},
		Cell{Text: Escape(colorName)},
		colorbar,
	))

	wt, err := wireTable(h, c, stripes, maxStripes, shieldHex, ins, outs)
	if err != nil {
		return Node{}, err
	}
	rows = append(rows, Row{Cell{Nested: wt}})

	rows = append(rows, imageRows(c.Image, c.Caption)...)
	rows = append(rows, miniBOMRow(h, bomRows, c.Name))
	if c.Notes != "" {
		rows = append(rows, headerRow(Cell{Text: LineBreaks(c.Notes)}))
	}

	style := "filled"
	if c.Category == harness.CategoryBundle {
		style = "filled,dashed"
	}
	return Node{
		Name:      c.Name,
		Label:     sectionTable(rows...),
		Shape:     "box",
		Style:     style,
		FillColor: "white",
		Margin:    "0",
	}, nil
}

// wireTable builds the cable's conductor table: one info row and one
// multi-stripe color bar per wire, optional per-wire part rows for bundles,
// and the shield rows.
func wireTable(h *harness.Harness, c *harness.Cable,
	stripes [][]string, maxStripes int, shieldHex string, ins, outs []string) (*Table, error) {

	t := &Table{Border: 0, CellSpacing: 0, CellPadding: 2, CellBorder: 0}
	spacer := Row{Cell{Text: "&nbsp;"}}
	t.Rows = append(t.Rows, spacer)

	for i := 1; i <= c.WireCount(); i++ {
		var info []string
		if !c.HideWireNumbers {
			info = append(info, strconv.Itoa(i))
		}
		colorstr, err := colors.Translate(c.Colors[i-1], h.ColorMode)
		if err != nil {
			return nil, fmt.Errorf("cable %s wire %d: %w", c.Name, i, err)
		}
		if colorstr != "" {
			info = append(info, colorstr)
		}
		if len(c.WireLabels) > 0 {
			info = append(info, c.WireLabels[i-1])
		}
		t.Rows = append(t.Rows, Row{
			Cell{Text: ins[i]},
			Cell{Text: Escape(strings.Join(info, ":"))},
			Cell{Text: outs[i]},
		})

		// Bar rows are reversed so the stripe order matches the curved
		// wire edges when more than two colors are involved.
		bg := make([]string, 0, maxStripes+2)
		bg = append(bg, "#000000")
		bg = append(bg, colors.PadStripes(stripes[i-1], maxStripes)...)
		bg = append(bg, "#000000")
		bar := &Table{Border: 0, CellSpacing: 0, CellPadding: 0, CellBorder: 0}
		for j := len(bg) - 1; j >= 0; j-- {
			bar.Rows = append(bar.Rows, Row{Cell{Colspan: 3, Height: 2, BGColor: bg[j], NoPad: true}})
		}
		t.Rows = append(t.Rows, Row{
			Cell{Colspan: 3, Port: wirePort(i), Height: 2 * len(bg), NoPad: true, Nested: bar},
		})

		if c.Category == harness.CategoryBundle {
			var id []Cell
			if pn := c.WirePN(i); pn != "" {
				id = append(id, Cell{Text: "P/N: " + Escape(pn)})
			}
			if mi := manufacturerInfo(c.WireManufacturer(i), c.WireMPN(i)); mi != "" {
				id = append(id, Cell{Text: LineBreaks(mi)})
			}
			if len(id) > 0 {
				inner := &Table{Border: 0, CellSpacing: 0, CellPadding: 0, CellBorder: 0, Rows: []Row{id}}
				t.Rows = append(t.Rows, Row{Cell{Colspan: 3, Nested: inner}})
			}
		}
	}

	if c.Shield.Present {
		t.Rows = append(t.Rows, spacer)
		t.Rows = append(t.Rows, Row{
			Cell{Text: ins[harness.ShieldWire]},
			Cell{Text: "Shield"},
			Cell{Text: outs[harness.ShieldWire]},
		})
		if shieldHex != "" {
			t.Rows = append(t.Rows, Row{
				Cell{Colspan: 3, Port: "ws", Height: 6, BGColor: shieldHex, BorderW: 2, Sides: "tb", NoPad: true},
			})
		} else {
			t.Rows = append(t.Rows, Row{
				Cell{Colspan: 3, Port: "ws", Height: 2, BGColor: "#000000", NoPad: true},
			})
		}
	}

	t.Rows = append(t.Rows, spacer)
	return t, nil
}

// mateEdges emits one dashed black edge per pin-level mate, directed per its
// arrow glyph. Component-level mates are not drawn.
func mateEdges(h *harness.Harness) []Edge {
	var edges []Edge
	for _, m := range h.MatesPin {
		dir := "both"
		switch m.Dir {
		case harness.DirForward:
			dir = "forward"
		case harness.DirBackward:
			dir = "back"
		}
		edges = append(edges, Edge{
			From:  Endpoint{Name: m.FromName, Port: connectorPort(h, m.FromName, m.FromPin, "r"), Compass: "e"},
			To:    Endpoint{Name: m.ToName, Port: connectorPort(h, m.ToName, m.ToPin, "l"), Compass: "w"},
			Color: "#000000",
			Style: "dashed",
			Dir:   dir,
		})
	}
	return edges
}
