package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output modes after "auto" has been resolved.
const (
	ModeText     = "text"
	ModeMarkdown = "markdown"
	ModeJSON     = "json"
	ModeYAML     = "yaml"
)

// Renderer writes command output in one resolved mode.
type Renderer struct {
	w    io.Writer
	mode string
}

// NewRenderer resolves format against w. "auto" becomes text on a terminal
// and markdown everywhere else.
func NewRenderer(w io.Writer, format string) *Renderer {
	mode := format
	if mode == "" || mode == "auto" {
		mode = ModeMarkdown
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in int
			mode = ModeText
		}
	}
	return &Renderer{w: w, mode: mode}
}

// Mode returns the resolved output mode.
func (r *Renderer) Mode() string { return r.mode }

// Structured reports whether the mode is a machine format.
func (r *Renderer) Structured() bool {
	return r.mode == ModeJSON || r.mode == ModeYAML
}

// Encode writes v as JSON or YAML.
func (r *Renderer) Encode(v any) error {
	switch r.mode {
	case ModeJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("output mode %q is not structured", r.mode)
	}
}

// Header prints a section title.
func (r *Renderer) Header(title string) {
	if r.mode == ModeMarkdown {
		_, _ = fmt.Fprintf(r.w, "## %s\n\n", title)
		return
	}
	_, _ = fmt.Fprintln(r.w, title)
}

// Table prints rows under header, as a box table or a markdown table.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.AppendHeader(header)
	t.AppendRows(rows)

	if r.mode == ModeMarkdown {
		t.RenderMarkdown()
		_, _ = fmt.Fprintln(r.w)
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// Println writes a line of plain text.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}
