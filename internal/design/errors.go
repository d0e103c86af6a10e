package design

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these through errors.Is.
var (
	// ErrValidation reports structurally invalid input: an unknown model kind,
	// a weight vector of the wrong length, a malformed coefficient.
	ErrValidation = errors.New("validation error")

	// ErrOrdering reports a declaration made out of order: an EV after the
	// first contrast, or a contrast before any EV.
	ErrOrdering = errors.New("ordering error")

	// ErrUnresolvedReference reports a contrast expression naming an EV that
	// was never declared.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrUnsupportedFeature reports a recognised option that is not implemented.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrUnknownEV reports a contrast term whose EV name is missing.
	ErrUnknownEV = errors.New("unknown EV")
)

// Error is the structured error returned by registry and compiler operations.
type Error struct {
	Kind    error  // one of the Err* kinds above
	Field   string // offending field or declaration title, if any
	Expr    string // contrast expression, if the error came from the compiler
	Column  int    // 1-based column within Expr (0 when not applicable)
	Message string
}

func (e *Error) Error() string {
	var prefix string
	switch {
	case e.Expr != "" && e.Column > 0:
		prefix = fmt.Sprintf("%s: %q:%d", e.Kind, e.Expr, e.Column)
	case e.Expr != "":
		prefix = fmt.Sprintf("%s: %q", e.Kind, e.Expr)
	default:
		prefix = e.Kind.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Is matches the error against its kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap exposes the kind so wrapped chains still resolve with errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func exprError(kind error, expr string, column int, format string, args ...any) *Error {
	return &Error{Kind: kind, Expr: expr, Column: column, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or nil if err did not originate here.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrOrdering, ErrUnresolvedReference, ErrUnsupportedFeature, ErrUnknownEV} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
