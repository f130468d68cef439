package harness

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is returned when a connector or cable is declared
	// twice under the same name.
	ErrDuplicateName = errors.New("duplicate component name")

	// ErrEmptyName is returned when a component is declared without a name.
	ErrEmptyName = errors.New("component name must not be empty")

	// ErrDuplicatePin is returned when a connector declares the same pin ID
	// more than once.
	ErrDuplicatePin = errors.New("duplicate pin ID")

	// ErrListMismatch is returned when a parallel attribute list (pinlabels,
	// pincolors, wirelabels, per-wire part fields) does not match the length
	// of its pin or wire list.
	ErrListMismatch = errors.New("parallel list length mismatch")

	// ErrUnknownCable is returned by Connect when the via name is neither a
	// declared cable nor a mate arrow glyph.
	ErrUnknownCable = errors.New("unknown cable")
)

// AmbiguousReferenceError reports a pin or wire token that matches both an
// identifier and a label pointing at different underlying items.
type AmbiguousReferenceError struct {
	Component string
	Token     string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("%s:%s matches both an ID and a label for different positions", e.Component, e.Token)
}

// DuplicateLabelError reports a label or color token matching more than one
// pin or wire position.
type DuplicateLabelError struct {
	Component string
	Token     string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("%s:%s matches more than one position", e.Component, e.Token)
}

// PinNotFoundError reports a pin token matching neither a declared pin ID
// nor a pin label.
type PinNotFoundError struct {
	Connector string
	Token     string
}

func (e *PinNotFoundError) Error() string {
	return fmt.Sprintf("%s:%s: pin not found", e.Connector, e.Token)
}

// WireNotFoundError reports a wire token matching neither a wire number, a
// color, nor a wire label.
type WireNotFoundError struct {
	Cable string
	Token string
}

func (e *WireNotFoundError) Error() string {
	return fmt.Sprintf("%s:%s: wire not found", e.Cable, e.Token)
}
