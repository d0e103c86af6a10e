// Package engine compiles design configurations into FSF design files.
// It builds the design, renders it through the template, writes it, runs
// feat_model and keeps the run history.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/featdesign/internal/featmodel"
	"github.com/leapstack-labs/featdesign/internal/state"
)

// Engine orchestrates design compilation.
type Engine struct {
	// Structured logger
	logger *slog.Logger

	store  state.Store // nil when run history is disabled
	runner *featmodel.Runner
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite run history (empty disables it)
	StatePath string
	// Store overrides StatePath with an already opened store
	Store state.Store
	// Runner runs feat_model (optional, uses featmodel.DefaultBinary if nil)
	Runner *featmodel.Runner
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine, opening the run history when one is configured.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	runner := cfg.Runner
	if runner == nil {
		runner = &featmodel.Runner{Logger: logger}
	}

	store := cfg.Store
	if store == nil && cfg.StatePath != "" {
		logger.Debug("opening run history", "path", cfg.StatePath)

		// Ensure state directory exists
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}

		sqlite := state.NewSQLiteStore(logger)
		if err := sqlite.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		store = sqlite
	}

	return &Engine{
		logger: logger,
		store:  store,
		runner: runner,
	}, nil
}

// Close releases the run history.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// GetStateStore returns the run history, or nil when it is disabled.
func (e *Engine) GetStateStore() state.Store {
	return e.store
}
