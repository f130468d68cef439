package harness

// MateKind distinguishes the two arrow glyph families.
type MateKind int

const (
	// MatePinLevel links two specific pins and is drawn as a dashed edge.
	// Declared with the single-line glyphs <--, -->, <->.
	MatePinLevel MateKind = iota
	// MateComponentLevel pairs two whole components for cross-referencing
	// and is not drawn as a wire. Declared with the double-line glyphs
	// <==, ==>, <=>.
	MateComponentLevel
)

// MateDirection encodes which way a mate arrow points.
type MateDirection int

const (
	// DirBoth is a bidirectional mate (<-> or <=>).
	DirBoth MateDirection = iota
	// DirForward points from the left endpoint to the right (--> or ==>).
	DirForward
	// DirBackward points from the right endpoint to the left (<-- or <==).
	DirBackward
)

// MatePin is a direct pin-to-pin link not passing through a cable.
type MatePin struct {
	FromName string
	FromPin  string
	ToName   string
	ToPin    string
	Dir      MateDirection
}

// MateComponent pairs two whole components.
type MateComponent struct {
	FromName string
	ToName   string
	Dir      MateDirection
}

// arrowGlyphs maps the six recognized mate glyphs to their kind and
// direction.
var arrowGlyphs = map[string]struct {
	kind MateKind
	dir  MateDirection
}{
	"<--": {MatePinLevel, DirBackward},
	"-->": {MatePinLevel, DirForward},
	"<->": {MatePinLevel, DirBoth},
	"<==": {MateComponentLevel, DirBackward},
	"==>": {MateComponentLevel, DirForward},
	"<=>": {MateComponentLevel, DirBoth},
}

// ParseArrow recognizes a mate arrow glyph. ok is false for any other token.
func ParseArrow(glyph string) (kind MateKind, dir MateDirection, ok bool) {
	a, ok := arrowGlyphs[glyph]
	if !ok {
		return 0, 0, false
	}
	return a.kind, a.dir, true
}
