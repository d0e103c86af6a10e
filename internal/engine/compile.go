package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/featdesign/internal/cli/config"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/leapstack-labs/featdesign/internal/document"
	"github.com/leapstack-labs/featdesign/internal/featmodel"
	"github.com/leapstack-labs/featdesign/internal/state"
)

// Options controls a single compilation.
type Options struct {
	// OutFile is where the design is written; empty writes a temporary
	// file that is removed once the run finishes
	OutFile string
	// Template is a custom design template; empty uses the embedded one
	Template string
	// NoRun skips feat_model
	NoRun bool
}

// Result describes a compiled design.
type Result struct {
	Design  *design.Design
	Content string // rendered design text
	// DesignPath is the file the design was written to. A temporary file
	// no longer exists when Compile returns.
	DesignPath string
	Temporary  bool
	RunID      string            // empty when run history is disabled
	Model      *featmodel.Result // nil when feat_model was not run
}

// Build declares every setting, EV and contrast of dc on a new design.
// Structural problems are reported before anything is declared.
func Build(dc config.DesignConfig) (*design.Design, error) {
	if err := dc.Validate(); err != nil {
		return nil, err
	}

	data := design.DataSettings{
		InputFile:           dc.Input,
		OutputDir:           dc.OutputDir,
		TR:                  dc.TR,
		HighPass:            dc.HighPass,
		ApplyHighPassFilter: dc.ApplyFilter,
		Volumes:             dc.Volumes,
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	d := design.New()
	d.SetData(data)
	d.SetStats(design.StatsSettings{Prewhiten: dc.Prewhiten, ConfoundFile: dc.Confounds})

	for _, ev := range dc.EVs {
		if err := d.AddEV(ev.ToEV()); err != nil {
			return nil, fmt.Errorf("ev %q: %w", ev.Title, err)
		}
	}
	for _, c := range dc.Contrasts {
		if err := d.AddContrast(c.ToDecl()); err != nil {
			return nil, fmt.Errorf("contrast %q: %w", c.Title, err)
		}
	}
	return d, nil
}

// Check builds and renders dc without writing or running anything.
func (e *Engine) Check(dc config.DesignConfig, templatePath string) (*Result, error) {
	d, content, err := e.render(dc, templatePath)
	if err != nil {
		return nil, err
	}
	return &Result{Design: d, Content: content}, nil
}

func (e *Engine) render(dc config.DesignConfig, templatePath string) (*design.Design, string, error) {
	d, err := Build(dc)
	if err != nil {
		return nil, "", err
	}
	e.logger.Debug("design built", "evs", len(d.EVs()), "contrasts", len(d.Contrasts()))

	tmpl, err := document.Load(templatePath)
	if err != nil {
		return nil, "", err
	}
	content, err := document.Render(tmpl, d.Namespace())
	if err != nil {
		return nil, "", err
	}
	return d, content, nil
}

// Compile builds, renders and writes the design, then runs feat_model on
// it unless opts.NoRun is set. A feat_model run that exits non-zero
// returns the Result together with a *ModelExitError.
func (e *Engine) Compile(ctx context.Context, dc config.DesignConfig, opts Options) (*Result, error) {
	d, content, err := e.render(dc, opts.Template)
	if err != nil {
		return nil, err
	}

	out, err := document.Write(opts.OutFile, content)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := out.Cleanup(); err != nil {
			e.logger.Warn("failed to remove temporary design", "path", out.Path, "error", err)
		}
	}()
	e.logger.Info("design written", "path", out.Path, "temporary", out.Temporary)

	res := &Result{
		Design:     d,
		Content:    content,
		DesignPath: out.Path,
		Temporary:  out.Temporary,
	}
	res.RunID = e.recordStart(ctx, res, dc)

	if opts.NoRun {
		e.recordEnd(ctx, res.RunID, state.RunStatusRendered, nil, "")
		return res, nil
	}

	model, err := e.runner.Run(ctx, out.Path)
	if err != nil {
		e.recordEnd(ctx, res.RunID, state.RunStatusFailed, nil, err.Error())
		return res, err
	}
	res.Model = &model

	code := model.ExitCode
	if !model.Succeeded() {
		exitErr := &ModelExitError{Binary: model.Binary, ExitCode: code}
		e.recordEnd(ctx, res.RunID, state.RunStatusFailed, &code, exitErr.Error())
		return res, exitErr
	}

	e.logger.Info("feat_model finished", "duration", model.Duration)
	e.recordEnd(ctx, res.RunID, state.RunStatusSucceeded, &code, "")
	return res, nil
}

// recordStart adds the run to the history. History failures are logged,
// never returned: the design file is the product.
func (e *Engine) recordStart(ctx context.Context, res *Result, dc config.DesignConfig) string {
	if e.store == nil {
		return ""
	}
	run, err := e.store.CreateRun(ctx, state.NewRun{
		DesignPath:    res.DesignPath,
		InputFile:     dc.Input,
		OutputDir:     dc.OutputDir,
		EVCount:       len(res.Design.EVs()),
		ContrastCount: len(res.Design.Contrasts()),
	})
	if err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return ""
	}
	e.logger.Debug("run recorded", slog.String("run_id", run.ID))
	return run.ID
}

func (e *Engine) recordEnd(ctx context.Context, id string, status state.RunStatus, exitCode *int, errMsg string) {
	if e.store == nil || id == "" {
		return
	}
	// The run outcome is recorded even when ctx was cancelled mid-run.
	if err := e.store.CompleteRun(context.WithoutCancel(ctx), id, status, exitCode, errMsg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", id, "error", err)
	}
}
