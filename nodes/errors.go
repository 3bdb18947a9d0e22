package nodes

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation matches every *InvariantViolation.
	ErrInvariantViolation = errors.New("IR invariant violation")
	// ErrUnsupportedShape matches every *UnsupportedShape.
	ErrUnsupportedShape = errors.New("unsupported IR shape")
)

// InvariantViolation reports a structurally invalid tree: wrong subquery
// column count, a dangling alias reference, an impossible join shape.
// It is fatal to the current compilation.
type InvariantViolation struct {
	Kind   NodeKind
	Alias  Alias // zero when the node has none
	Reason string
}

func (e *InvariantViolation) Error() string {
	if e.Alias.IsZero() {
		return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s: %s", ErrInvariantViolation, e.Kind, e.Alias, e.Reason)
}

// Is makes errors.Is(err, ErrInvariantViolation) hold.
func (e *InvariantViolation) Is(target error) bool { return target == ErrInvariantViolation }

// Violation creates an InvariantViolation with a formatted reason.
func Violation(kind NodeKind, alias Alias, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Kind: kind, Alias: alias, Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedShape reports a node combination a pass or emitter
// deliberately does not handle.
type UnsupportedShape struct {
	Kind   NodeKind
	Reason string
}

func (e *UnsupportedShape) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUnsupportedShape, e.Kind, e.Reason)
}

// Is makes errors.Is(err, ErrUnsupportedShape) hold.
func (e *UnsupportedShape) Is(target error) bool { return target == ErrUnsupportedShape }

// Unsupported creates an UnsupportedShape with a formatted reason.
func Unsupported(kind NodeKind, format string, args ...any) *UnsupportedShape {
	return &UnsupportedShape{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
