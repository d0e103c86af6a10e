// Package document turns a design namespace into an FSF design file on disk.
package document

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/featdesign/internal/design"
	starctx "github.com/leapstack-labs/featdesign/internal/starlark"
	"github.com/leapstack-labs/featdesign/internal/template"
)

// DefaultTemplateName is the file name errors report for the embedded template.
const DefaultTemplateName = "design.fsf"

// TempPattern is the os.CreateTemp pattern for unnamed design files.
const TempPattern = "tmp_design*.fsf"

//go:embed templates/design.fsf
var defaultTemplate string

// DefaultTemplate returns the source of the embedded first-level template.
func DefaultTemplate() string { return defaultTemplate }

// Load parses the template at path, or the embedded default when path is empty.
func Load(path string) (*template.Template, error) {
	if path == "" {
		return template.ParseString(defaultTemplate, DefaultTemplateName)
	}

	f, err := os.Open(path) //nolint:gosec // path is the template the user configured
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer func() { _ = f.Close() }()

	return template.Parse(f, path)
}

// Render evaluates tmpl against ns and returns the design text.
func Render(tmpl *template.Template, ns design.Namespace) (string, error) {
	ctx, err := starctx.NewExecutionContext(ns)
	if err != nil {
		return "", fmt.Errorf("build template context: %w", err)
	}
	return template.Render(tmpl, ctx)
}

// Output is a design file written to disk.
type Output struct {
	Path      string
	Temporary bool // created under the temp dir because no path was given
}

// Write stores content at path with mode 0644, creating the parent directory.
// An empty path writes to a fresh temporary file instead.
func Write(path, content string) (Output, error) {
	if path == "" {
		return writeTemp(content)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Output{}, fmt.Errorf("create design directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // G306: design files are meant to be world-readable
		return Output{}, fmt.Errorf("write design: %w", err)
	}
	return Output{Path: path}, nil
}

func writeTemp(content string) (Output, error) {
	f, err := os.CreateTemp("", TempPattern)
	if err != nil {
		return Output{}, fmt.Errorf("create temporary design: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return Output{}, fmt.Errorf("write temporary design: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return Output{}, fmt.Errorf("close temporary design: %w", err)
	}
	return Output{Path: f.Name(), Temporary: true}, nil
}

// Cleanup removes the file if it is temporary. Named outputs are kept.
func (o Output) Cleanup() error {
	if !o.Temporary {
		return nil
	}
	if err := os.Remove(o.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temporary design: %w", err)
	}
	return nil
}
