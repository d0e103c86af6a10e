package engine

import "fmt"

// ModelExitError reports that feat_model ran to completion with a
// non-zero exit status.
type ModelExitError struct {
	Binary   string
	ExitCode int
}

func (e *ModelExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
}
