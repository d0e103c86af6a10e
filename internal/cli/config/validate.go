package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/featdesign/internal/design"
)

// Validate checks the settings every command depends on. Design content is
// checked separately by DesignConfig.Validate so commands that never build
// a design work without one.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("%w: output: unknown format %q (want one of %v)", design.ErrValidation, c.OutputFormat, OutputFormats)
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("%w: log_format: unknown format %q (want one of %v)", design.ErrValidation, c.LogFormat, LogFormats)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("%w: watch_debounce must not be negative", design.ErrValidation)
	}
	return nil
}

// Validate fails fast on a design that could never compile: one with no
// EVs, no contrasts, or an EV without a model. It runs before any
// declaration reaches the design registries.
func (d *DesignConfig) Validate() error {
	if len(d.EVs) == 0 {
		return fmt.Errorf("%w: at least one EV is required", design.ErrValidation)
	}
	if len(d.Contrasts) == 0 {
		return fmt.Errorf("%w: at least one contrast is required", design.ErrValidation)
	}
	for i, ev := range d.EVs {
		if ev.Model == nil {
			return fmt.Errorf("%w: evs[%d] %q: model is required", design.ErrValidation, i, ev.Title)
		}
	}
	return nil
}

// ToEV converts the declaration into a design EV.
func (e EVConfig) ToEV() design.EV {
	ev := design.EV{
		Title:       e.Title,
		SourcePath:  e.File,
		ApplyFilter: e.Filter == nil || *e.Filter,
		Derivative:  e.Derivative,
	}
	if e.Model != nil {
		ev.Model = *e.Model
	}
	return ev
}

// ToDecl converts the declaration into a design contrast declaration.
func (c ContrastConfig) ToDecl() design.ContrastDecl {
	return design.ContrastDecl{Title: c.Title, Expr: c.Expr, Weights: c.Weights}
}
