// Package config provides configuration management for the featdesign CLI.
//
// A design is described by a featdesign.yaml file, FEATDESIGN_ environment
// variables and command-line flags, merged in that order of precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/featdesign/internal/design"
)

// Config holds all CLI configuration options.
type Config struct {
	DesignConfig `koanf:",squash"`

	OutFile       string        `koanf:"outfile"`
	Template      string        `koanf:"template"`
	NoRun         bool          `koanf:"no_run"`
	FeatModel     string        `koanf:"feat_model"`
	StatePath     string        `koanf:"state_path"` // empty disables run history
	Verbose       bool          `koanf:"verbose"`
	LogFormat     string        `koanf:"log_format"`
	OutputFormat  string        `koanf:"output"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
}

// DesignConfig is the declarative form of one first-level design.
type DesignConfig struct {
	Input       string  `koanf:"input"`
	OutputDir   string  `koanf:"outdir"`
	TR          float64 `koanf:"tr"`
	HighPass    float64 `koanf:"high_pass"`
	ApplyFilter bool    `koanf:"apply_filter"`
	Volumes     int     `koanf:"npts"`
	Prewhiten   bool    `koanf:"prewhiten"`
	Confounds   string  `koanf:"confounds"`

	EVs       []EVConfig       `koanf:"evs"`
	Contrasts []ContrastConfig `koanf:"contrasts"`
}

// EVConfig declares one explanatory variable.
type EVConfig struct {
	Title      string            `koanf:"title"`
	File       string            `koanf:"file"`
	Model      *design.ModelKind `koanf:"model"`  // required
	Filter     *bool             `koanf:"filter"` // nil means true
	Derivative bool              `koanf:"derivative"`
}

// ContrastConfig declares one contrast, as an expression or as weights.
type ContrastConfig struct {
	Title   string    `koanf:"title"`
	Expr    string    `koanf:"expr"`
	Weights []float64 `koanf:"weights"`
}

// Default configuration values.
const (
	DefaultStateFile     = ".featdesign/history.db"
	DefaultFeatModel     = "feat_model"
	DefaultLogFormat     = "text"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultWatchDebounce = 100 * time.Millisecond
)

// Output formats accepted by --output.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// LogFormats accepted by --log-format.
var LogFormats = []string{"text", "json"}
