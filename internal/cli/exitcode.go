package cli

import (
	"errors"

	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/leapstack-labs/featdesign/internal/engine"
)

// Exit codes.
const (
	ExitOK      = 0 // design written (and feat_model succeeded, if run)
	ExitFailure = 1 // I/O, template, history or process start failure
	ExitInvalid = 2 // invalid usage or an invalid design
	ExitModel   = 3 // feat_model ran and exited non-zero
)

// UsageError wraps a command-line parsing error.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCodeFor determines the appropriate exit code for an error.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitInvalid
	}

	var modelErr *engine.ModelExitError
	if errors.As(err, &modelErr) {
		return ExitModel
	}

	// Every design error kind is the caller's to fix
	if design.KindOf(err) != nil {
		return ExitInvalid
	}

	// Fallback for unclassified errors
	return ExitFailure
}
