package commands

import (
	"log/slog"

	"github.com/leapstack-labs/featdesign/internal/cli/config"
	"github.com/leapstack-labs/featdesign/internal/engine"
	"github.com/leapstack-labs/featdesign/internal/featmodel"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmd, cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the run history.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: NewRenderer(cmd.OutOrStdout(), cfg.OutputFormat),
	}
}

// getConfig returns the current configuration, or the defaults when the
// command ran without the root command's config loading.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		FeatModel:     config.DefaultFeatModel,
		StatePath:     config.DefaultStateFile,
		LogFormat:     config.DefaultLogFormat,
		OutputFormat:  config.DefaultOutput,
		WatchDebounce: config.DefaultWatchDebounce,
	}
}

func createEngine(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		StatePath: cfg.StatePath,
		Runner: &featmodel.Runner{
			Binary: cfg.FeatModel,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
			Logger: logger,
		},
		Logger: logger,
	})
}
