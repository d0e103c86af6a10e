// Package featmodel invokes FSL's feat_model on a rendered design file.
package featmodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultBinary is the program run when Runner.Binary is empty.
const DefaultBinary = "feat_model"

// Runner runs feat_model as a child process.
type Runner struct {
	// Binary is the program name or path; DefaultBinary when empty.
	Binary string
	// Stdout and Stderr receive the process output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Result is the outcome of a completed run. A non-zero ExitCode is a
// finished run, not a Go error.
type Result struct {
	Binary   string
	ExitCode int
	Duration time.Duration
}

// Succeeded reports whether the process exited with status 0.
func (r Result) Succeeded() bool { return r.ExitCode == 0 }

// Run executes the binary with designPath as its only argument and blocks
// until it exits. It returns an error only when the process could not be
// started or ctx ended the run.
func (r *Runner) Run(ctx context.Context, designPath string) (Result, error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	res := Result{Binary: bin}

	path, err := exec.LookPath(bin)
	if err != nil {
		return res, fmt.Errorf("locate %s: %w", bin, err)
	}

	cmd := exec.CommandContext(ctx, path, designPath)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	logger.Debug("running model binary", "binary", path, "design", designPath)
	start := time.Now()
	err = cmd.Run()
	res.Duration = time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s interrupted: %w", bin, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Debug("model binary finished", "duration", res.Duration)
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		logger.Warn("model binary exited non-zero", "binary", bin, "exit_code", res.ExitCode)
		return res, nil
	default:
		return res, fmt.Errorf("run %s: %w", bin, err)
	}
}
