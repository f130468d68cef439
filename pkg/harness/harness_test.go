package harness

import (
	"errors"
	"testing"
)

// buildPair declares two 2-pin connectors A and B joined by nothing yet,
// plus a 2-wire cable W1.
func buildPair(t *testing.T) *Harness {
	t.Helper()
	h := New()
	if err := h.AddConnector(Connector{Name: "A", Pins: []string{"1", "2"}, PinLabels: []string{"pwr", "gnd"}}); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := h.AddConnector(Connector{Name: "B", Pins: []string{"1", "2"}}); err != nil {
		t.Fatalf("add B: %v", err)
	}
	if err := h.AddCable(Cable{Name: "W1", Colors: []string{"RD", "BK"}}); err != nil {
		t.Fatalf("add W1: %v", err)
	}
	return h
}

func TestConnectRecordsAndActivates(t *testing.T) {
	h := buildPair(t)

	if err := h.Connect("A", "1", "W1", "1", "B", "1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := h.Connect("A", "2", "W1", "2", "B", "2"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	w1, _ := h.Cable("W1")
	if len(w1.Connections) != 2 {
		t.Fatalf("connections = %d, want 2", len(w1.Connections))
	}
	if c := w1.Connections[0]; c.FromName != "A" || c.FromPin != "1" || c.Wire != 1 || c.ToName != "B" || c.ToPin != "1" {
		t.Errorf("connection[0] = %+v", c)
	}

	a, _ := h.Connector("A")
	b, _ := h.Connector("B")
	for _, pin := range []string{"1", "2"} {
		if !a.PinVisible(pin) || !b.PinVisible(pin) {
			t.Errorf("pin %s not activated on both ends", pin)
		}
	}
}

func TestConnectResolvesLabelsAndColors(t *testing.T) {
	h := buildPair(t)

	// "pwr" is A's label for pin 1; "RD" is wire 1's color.
	if err := h.Connect("A", "pwr", "W1", "RD", "B", "1"); err != nil {
		t.Fatalf("connect via label/color: %v", err)
	}
	w1, _ := h.Cable("W1")
	got := w1.Connections[0]
	if got.FromPin != "1" || got.Wire != 1 {
		t.Errorf("resolved to pin %q wire %d, want pin 1 wire 1", got.FromPin, got.Wire)
	}

	// Resolution is idempotent for numeric pin IDs: same record either way.
	h2 := buildPair(t)
	if err := h2.Connect("A", "1", "W1", "1", "B", "1"); err != nil {
		t.Fatalf("connect via IDs: %v", err)
	}
	w2, _ := h2.Cable("W1")
	if w2.Connections[0] != got {
		t.Errorf("label route %+v != ID route %+v", got, w2.Connections[0])
	}
}

func TestConnectErrors(t *testing.T) {
	t.Run("PinNotFound", func(t *testing.T) {
		h := buildPair(t)
		err := h.Connect("A", "9", "W1", "1", "B", "1")
		var pnf *PinNotFoundError
		if !errors.As(err, &pnf) {
			t.Fatalf("error = %v, want *PinNotFoundError", err)
		}
		if pnf.Connector != "A" || pnf.Token != "9" {
			t.Errorf("error fields = %+v", pnf)
		}
		// Validation precedes mutation.
		w1, _ := h.Cable("W1")
		if len(w1.Connections) != 0 {
			t.Error("failed connect must not record a connection")
		}
	})

	t.Run("WireNotFound", func(t *testing.T) {
		h := buildPair(t)
		err := h.Connect("A", "1", "W1", "GN", "B", "1")
		var wnf *WireNotFoundError
		if !errors.As(err, &wnf) {
			t.Fatalf("error = %v, want *WireNotFoundError", err)
		}
	})

	t.Run("UnknownCable", func(t *testing.T) {
		h := buildPair(t)
		if err := h.Connect("A", "1", "W9", "1", "B", "1"); !errors.Is(err, ErrUnknownCable) {
			t.Fatalf("error = %v, want ErrUnknownCable", err)
		}
	})

	t.Run("AmbiguousPin", func(t *testing.T) {
		h := New()
		// Label "2" names pin 1 while pin ID "2" also exists.
		if err := h.AddConnector(Connector{Name: "X", Pins: []string{"1", "2"}, PinLabels: []string{"2", "1"}}); err != nil {
			t.Fatalf("add X: %v", err)
		}
		if err := h.AddCable(Cable{Name: "W", Colors: []string{"RD"}}); err != nil {
			t.Fatalf("add W: %v", err)
		}
		err := h.Connect("X", "2", "W", "1", "", "")
		var amb *AmbiguousReferenceError
		if !errors.As(err, &amb) {
			t.Fatalf("error = %v, want *AmbiguousReferenceError", err)
		}
	})

	t.Run("DuplicateWireColor", func(t *testing.T) {
		h := New()
		if err := h.AddConnector(Connector{Name: "X", Pins: []string{"1"}}); err != nil {
			t.Fatal(err)
		}
		if err := h.AddCable(Cable{Name: "W", Colors: []string{"RD", "RD"}}); err != nil {
			t.Fatal(err)
		}
		err := h.Connect("X", "1", "W", "RD", "", "")
		var dup *DuplicateLabelError
		if !errors.As(err, &dup) {
			t.Fatalf("error = %v, want *DuplicateLabelError", err)
		}
	})
}

func TestConnectorValidation(t *testing.T) {
	h := New()

	if err := h.AddConnector(Connector{Name: "D", Pins: []string{"1", "1"}}); !errors.Is(err, ErrDuplicatePin) {
		t.Errorf("duplicate pins: error = %v, want ErrDuplicatePin", err)
	}
	if err := h.AddConnector(Connector{Name: "E", Pins: []string{"1", "2"}, PinLabels: []string{"only-one"}}); !errors.Is(err, ErrListMismatch) {
		t.Errorf("short pinlabels: error = %v, want ErrListMismatch", err)
	}
	if err := h.AddConnector(Connector{Pins: []string{"1"}}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: error = %v, want ErrEmptyName", err)
	}
	if err := h.AddConnector(Connector{Name: "F", Pins: []string{"1"}, Loops: []Loop{{First: "1", Second: "9"}}}); err == nil {
		t.Error("loop to undeclared pin should fail")
	}

	if err := h.AddConnector(Connector{Name: "G", Pins: []string{"1"}}); err != nil {
		t.Fatalf("add G: %v", err)
	}
	if err := h.AddConnector(Connector{Name: "G", Pins: []string{"1"}}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("redeclare: error = %v, want ErrDuplicateName", err)
	}
}

func TestCableValidation(t *testing.T) {
	h := New()
	err := h.AddCable(Cable{Name: "W", Colors: []string{"RD", "BK"}, WireLabels: []string{"x"}})
	if !errors.Is(err, ErrListMismatch) {
		t.Errorf("short wirelabels: error = %v, want ErrListMismatch", err)
	}
	err = h.AddCable(Cable{Name: "W", Colors: []string{"RD"}, WirePNs: []string{"a", "b"}})
	if !errors.Is(err, ErrListMismatch) {
		t.Errorf("long wire_pns: error = %v, want ErrListMismatch", err)
	}
}

func TestArrowMates(t *testing.T) {
	h := buildPair(t)

	if err := h.Connect("A", "1", "<->", "", "B", "1"); err != nil {
		t.Fatalf("pin mate: %v", err)
	}
	if len(h.MatesPin) != 1 {
		t.Fatalf("mates_pin = %d, want 1", len(h.MatesPin))
	}
	m := h.MatesPin[0]
	if m.FromName != "A" || m.FromPin != "1" || m.ToName != "B" || m.ToPin != "1" || m.Dir != DirBoth {
		t.Errorf("mate = %+v", m)
	}
	// Mates never touch cables.
	w1, _ := h.Cable("W1")
	if len(w1.Connections) != 0 {
		t.Error("mate must not create a cable connection")
	}

	if err := h.Connect("A", "1", "<=>", "", "B", "1"); err != nil {
		t.Fatalf("component mate: %v", err)
	}
	if len(h.MatesComponent) != 1 {
		t.Fatalf("mates_component = %d, want 1", len(h.MatesComponent))
	}
	if mc := h.MatesComponent[0]; mc.FromName != "A" || mc.ToName != "B" {
		t.Errorf("component mate = %+v", mc)
	}
}

func TestParseArrow(t *testing.T) {
	tests := []struct {
		glyph string
		kind  MateKind
		dir   MateDirection
		ok    bool
	}{
		{"<--", MatePinLevel, DirBackward, true},
		{"-->", MatePinLevel, DirForward, true},
		{"<->", MatePinLevel, DirBoth, true},
		{"<==", MateComponentLevel, DirBackward, true},
		{"==>", MateComponentLevel, DirForward, true},
		{"<=>", MateComponentLevel, DirBoth, true},
		{"---", 0, 0, false},
		{"W1", 0, 0, false},
	}
	for _, tt := range tests {
		kind, dir, ok := ParseArrow(tt.glyph)
		if ok != tt.ok || (ok && (kind != tt.kind || dir != tt.dir)) {
			t.Errorf("ParseArrow(%q) = %v,%v,%v", tt.glyph, kind, dir, ok)
		}
	}
}

func TestShieldResolution(t *testing.T) {
	h := New()
	if err := h.AddConnector(Connector{Name: "X", Pins: []string{"1"}}); err != nil {
		t.Fatal(err)
	}
	if err := h.AddCable(Cable{Name: "W", Colors: []string{"RD"}, Shield: Shield{Present: true}}); err != nil {
		t.Fatal(err)
	}

	if err := h.Connect("X", "1", "W", "s", "", ""); err != nil {
		t.Fatalf("shield connect: %v", err)
	}
	w, _ := h.Cable("W")
	if w.Connections[0].Wire != ShieldWire {
		t.Errorf("wire = %d, want ShieldWire", w.Connections[0].Wire)
	}

	// "s" on a shieldless cable is not a wire.
	h2 := New()
	h2.AddConnector(Connector{Name: "X", Pins: []string{"1"}})
	h2.AddCable(Cable{Name: "W", Colors: []string{"RD"}})
	var wnf *WireNotFoundError
	if err := h2.Connect("X", "1", "W", "s", "", ""); !errors.As(err, &wnf) {
		t.Errorf("error = %v, want *WireNotFoundError", err)
	}
}

func TestDeclarationOrderPreserved(t *testing.T) {
	h := New()
	names := []string{"Z", "A", "M"}
	for _, n := range names {
		if err := h.AddConnector(Connector{Name: n, Pins: []string{"1"}}); err != nil {
			t.Fatal(err)
		}
	}
	for i, c := range h.Connectors() {
		if c.Name != names[i] {
			t.Errorf("connectors[%d] = %s, want %s", i, c.Name, names[i])
		}
	}
}

func TestBOMCacheInvalidation(t *testing.T) {
	h := buildPair(t)
	h.SetBOMCache([]BOMRow{{Description: "x", Qty: 1}})
	if _, ok := h.BOMCache(); !ok {
		t.Fatal("cache should be valid after SetBOMCache")
	}
	if err := h.Connect("A", "1", "W1", "1", "B", "1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.BOMCache(); ok {
		t.Error("Connect must invalidate the BOM cache")
	}
}
