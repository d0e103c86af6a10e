// Package state records design compilations in a SQLite run history.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

// RunStatus values.
const (
	RunStatusRendered  RunStatus = "rendered"  // design written; model binary not run
	RunStatusSucceeded RunStatus = "succeeded" // model binary exited 0
	RunStatusFailed    RunStatus = "failed"    // model binary exited non-zero or could not run
)

// NewRun describes a design that has just been written.
type NewRun struct {
	DesignPath    string
	InputFile     string
	OutputDir     string
	EVCount       int
	ContrastCount int
}

// Run is one recorded compilation.
type Run struct {
	ID            string
	DesignPath    string
	InputFile     string
	OutputDir     string
	EVCount       int
	ContrastCount int
	Status        RunStatus
	ExitCode      *int
	StartedAt     time.Time
	CompletedAt   *time.Time
	Error         string
}

// Store persists runs.
type Store interface {
	CreateRun(ctx context.Context, in NewRun) (*Run, error)
	CompleteRun(ctx context.Context, id string, status RunStatus, exitCode *int, errMsg string) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}
