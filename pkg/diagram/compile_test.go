package diagram

import (
	"errors"
	"strings"
	"testing"

	"github.com/tracewire/tracewire/pkg/harness"
)

// twoConnectorHarness wires A and B through the two-wire cable W1.
func twoConnectorHarness(t *testing.T) *harness.Harness {
	t.Helper()
	h := harness.New()
	for _, name := range []string{"A", "B"} {
		if err := h.AddConnector(harness.Connector{Name: name, Pins: []string{"1", "2"}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.AddCable(harness.Cable{Name: "W1", Colors: []string{"RD", "BK"}}); err != nil {
		t.Fatal(err)
	}
	if err := h.Connect("A", "1", "W1", "1", "B", "1"); err != nil {
		t.Fatal(err)
	}
	if err := h.Connect("A", "2", "W1", "2", "B", "2"); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestCompileTwoConnectorsOneCable(t *testing.T) {
	h := twoConnectorHarness(t)

	g, err := Compile(h)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3 (A, B, W1)", len(g.Nodes))
	}
	// Two wires, each with a connector-to-cable and cable-to-connector edge.
	if len(g.Edges) != 4 {
		t.Fatalf("edges = %d, want 4", len(g.Edges))
	}

	a, _ := h.Connector("A")
	b, _ := h.Connector("B")
	if !a.PortsRight || a.PortsLeft {
		t.Errorf("A sides = left %v right %v, want right only", a.PortsLeft, a.PortsRight)
	}
	if !b.PortsLeft || b.PortsRight {
		t.Errorf("B sides = left %v right %v, want left only", b.PortsLeft, b.PortsRight)
	}

	e := g.Edges[0]
	if e.From.String() != `"A":"p1r":e` || e.To.String() != `"W1":"w1":w` {
		t.Errorf("edge endpoints = %s -- %s", e.From, e.To)
	}
	if e.Color != "#000000:#ff0000:#000000" {
		t.Errorf("edge color = %q", e.Color)
	}
}

func TestCompileDOTOutput(t *testing.T) {
	h := twoConnectorHarness(t)
	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}

	dot := g.DOT()
	for _, want := range []string{
		"graph {",
		`rankdir="LR"`,
		`"A" [label=<`,
		`"W1" [label=<`,
		`"A":"p1r":e -- "W1":"w1":w`,
		`"W1":"w2":e -- "B":"p2l":w`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
}

func TestStripePadding(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{Name: "A", Pins: []string{"1", "2"}})
	// Wire 1 is plain red, wire 2 is white with a brown stripe (3 stripes).
	h.AddCable(harness.Cable{Name: "W", Colors: []string{"RD", "WHBN"}})
	if err := h.Connect("A", "1", "W", "1", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := h.Connect("A", "2", "W", "2", "", ""); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}

	// Both edges pad to three stripes plus the two black borders.
	for _, e := range g.Edges {
		if n := strings.Count(e.Color, ":") + 1; n != 5 {
			t.Errorf("edge color %q has %d stripes, want 5", e.Color, n)
		}
	}
	if g.Edges[0].Color != "#000000:#ff0000:#ff0000:#ff0000:#000000" {
		t.Errorf("padded single color = %q", g.Edges[0].Color)
	}
	if g.Edges[1].Color != "#000000:#ffffff:#895956:#ffffff:#000000" {
		t.Errorf("striped color = %q", g.Edges[1].Color)
	}
}

func TestMateEdge(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{Name: "A", Pins: []string{"1"}})
	h.AddConnector(harness.Connector{Name: "B", Pins: []string{"1"}})
	if err := h.Connect("A", "1", "<->", "", "B", "1"); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Style != "dashed" || e.Dir != "both" || e.Color != "#000000" {
		t.Errorf("mate edge = %+v", e)
	}

	// Component mates are not drawn.
	h2 := harness.New()
	h2.AddConnector(harness.Connector{Name: "A", Pins: []string{"1"}})
	h2.AddConnector(harness.Connector{Name: "B", Pins: []string{"1"}})
	if err := h2.Connect("A", "1", "<=>", "", "B", "1"); err != nil {
		t.Fatal(err)
	}
	g2, err := Compile(h2)
	if err != nil {
		t.Fatal(err)
	}
	if len(g2.Edges) != 0 {
		t.Errorf("component mate drew %d edges, want 0", len(g2.Edges))
	}
}

func TestLoopEdges(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{
		Name: "A", Pins: []string{"1", "2", "3"},
		Loops: []harness.Loop{{First: "2", Second: "3"}},
	})
	h.AddConnector(harness.Connector{Name: "B", Pins: []string{"1"}})
	h.AddCable(harness.Cable{Name: "W", Colors: []string{"RD"}})
	if err := h.Connect("A", "1", "W", "1", "B", "1"); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}

	var loop *Edge
	for i := range g.Edges {
		if g.Edges[i].Color == loopEdgeColor {
			loop = &g.Edges[i]
		}
	}
	if loop == nil {
		t.Fatal("no loop edge emitted")
	}
	// A feeds the cable, so its ports are on the right; loops follow.
	if loop.From.String() != `"A":"p2r":e` || loop.To.String() != `"A":"p3r":e` {
		t.Errorf("loop endpoints = %s -- %s", loop.From, loop.To)
	}
}

func TestLoopWithoutPortSide(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{
		Name: "A", Pins: []string{"1", "2"},
		Loops: []harness.Loop{{First: "1", Second: "2"}},
	})

	_, err := Compile(h)
	var nps *NoPortSideError
	if !errors.As(err, &nps) {
		t.Fatalf("error = %v, want *NoPortSideError", err)
	}
	if nps.Connector != "A" {
		t.Errorf("connector = %q, want A", nps.Connector)
	}
}

func TestHideDisconnectedPins(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{
		Name: "A", Pins: []string{"1", "2", "3"},
		HideDisconnectedPins: true,
	})
	h.AddConnector(harness.Connector{Name: "B", Pins: []string{"1"}})
	h.AddCable(harness.Cable{Name: "W", Colors: []string{"RD"}})
	if err := h.Connect("A", "2", "W", "1", "B", "1"); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	html := g.Nodes[0].Label.HTML()
	if !strings.Contains(html, `port="p2r"`) {
		t.Errorf("connected pin 2 missing:\n%s", html)
	}
	for _, hidden := range []string{`port="p1r"`, `port="p3r"`} {
		if strings.Contains(html, hidden) {
			t.Errorf("disconnected pin cell %s should be hidden", hidden)
		}
	}
}

func TestSimpleStyleConnector(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{Name: "A", Pins: []string{"1"}, Style: harness.StyleSimple})
	h.AddConnector(harness.Connector{Name: "B", Pins: []string{"1"}})
	h.AddCable(harness.Cable{Name: "W", Colors: []string{"RD"}})
	if err := h.Connect("A", "1", "W", "1", "B", "1"); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	// Simple connectors have no pin ports; the edge anchors to the node.
	if got := g.Edges[0].From.String(); got != `"A":e` {
		t.Errorf("simple-style endpoint = %s, want \"A\":e", got)
	}
	if strings.Contains(g.Nodes[0].Label.HTML(), "port=") {
		t.Error("simple-style label should not contain pin ports")
	}
}

func TestShieldRendering(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{Name: "A", Pins: []string{"1", "2"}})
	h.AddCable(harness.Cable{
		Name: "W", Colors: []string{"RD"},
		Shield: harness.Shield{Present: true, Color: "SN"},
	})
	if err := h.Connect("A", "1", "W", "1", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := h.Connect("A", "2", "W", "s", "", ""); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}

	var cable *Node
	for i := range g.Nodes {
		if g.Nodes[i].Name == "W" {
			cable = &g.Nodes[i]
		}
	}
	html := cable.Label.HTML()
	if !strings.Contains(html, "Shield") || !strings.Contains(html, `port="ws"`) {
		t.Errorf("shield row missing:\n%s", html)
	}

	var shieldEdge *Edge
	for i := range g.Edges {
		if g.Edges[i].To.Port == "ws" || g.Edges[i].From.Port == "ws" {
			shieldEdge = &g.Edges[i]
		}
	}
	if shieldEdge == nil {
		t.Fatal("no shield edge emitted")
	}
	if shieldEdge.Color != "#000000:#aaaaaa:#000000" {
		t.Errorf("shield edge color = %q", shieldEdge.Color)
	}
}

func TestBundleNodeStyle(t *testing.T) {
	h := harness.New()
	h.AddCable(harness.Cable{
		Name: "B1", Colors: []string{"RD"},
		Category: harness.CategoryBundle,
		WirePNs:  []string{"W-RD"},
	})

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	n := g.Nodes[0]
	if n.Style != "filled,dashed" {
		t.Errorf("bundle style = %q, want filled,dashed", n.Style)
	}
	if !strings.Contains(n.Label.HTML(), "P/N: W-RD") {
		t.Error("bundle wire part row missing")
	}
}

func TestGaugeEquiv(t *testing.T) {
	tests := []struct {
		gauge, unit string
		want        string
	}{
		{"0.25", "mm2", " (24 AWG)"},
		{"0.25", "mm²", " (24 AWG)"},
		{"24", "AWG", " (0.25 mm²)"},
		{"0.33", "mm2", ""}, // no table entry
		{"12", "oz", ""},    // unknown unit passes through
	}
	for _, tt := range tests {
		c := &harness.Cable{Gauge: tt.gauge, GaugeUnit: tt.unit, ShowEquiv: true}
		if got := gaugeEquiv(c); got != tt.want {
			t.Errorf("gaugeEquiv(%s %s) = %q, want %q", tt.gauge, tt.unit, got, tt.want)
		}
	}
	c := &harness.Cable{Gauge: "0.25", GaugeUnit: "mm2"}
	if gaugeEquiv(c) != "" {
		t.Error("equivalent shown without ShowEquiv")
	}
}

func TestWireEndpointAnnotations(t *testing.T) {
	h := harness.New()
	h.AddConnector(harness.Connector{Name: "A", Pins: []string{"1"}, PinLabels: []string{"VCC"}})
	h.AddConnector(harness.Connector{Name: "B", Pins: []string{"1"}})
	h.AddCable(harness.Cable{Name: "W", Colors: []string{"RD"}})
	if err := h.Connect("A", "1", "W", "1", "B", "1"); err != nil {
		t.Fatal(err)
	}

	g, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	var cable *Node
	for i := range g.Nodes {
		if g.Nodes[i].Name == "W" {
			cable = &g.Nodes[i]
		}
	}
	html := cable.Label.HTML()
	if !strings.Contains(html, "A:1:VCC") {
		t.Errorf("in-annotation missing pin label:\n%s", html)
	}
	if !strings.Contains(html, "B:1") {
		t.Errorf("out-annotation missing:\n%s", html)
	}
}

func TestCompileIsRepeatable(t *testing.T) {
	h := twoConnectorHarness(t)
	g1, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Compile(h)
	if err != nil {
		t.Fatal(err)
	}
	if g1.DOT() != g2.DOT() {
		t.Error("recompiling an unchanged harness must be deterministic")
	}
}
