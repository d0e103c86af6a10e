package commands

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/leapstack-labs/featdesign/internal/engine"
	"github.com/spf13/cobra"
)

// CheckOutput is the structured form of the check command's report.
type CheckOutput struct {
	EVCount       int            `json:"ev_count" yaml:"ev_count"`
	ContrastCount int            `json:"contrast_count" yaml:"contrast_count"`
	EVs           []EVInfo       `json:"evs" yaml:"evs"`
	Contrasts     []ContrastInfo `json:"contrasts" yaml:"contrasts"`
	Design        string         `json:"design,omitempty" yaml:"design,omitempty"`
}

// EVInfo describes one EV.
type EVInfo struct {
	Index  int    `json:"index" yaml:"index"`
	Title  string `json:"title" yaml:"title"`
	File   string `json:"file" yaml:"file"`
	Model  string `json:"model" yaml:"model"`
	Filter bool   `json:"filter" yaml:"filter"`
}

// ContrastInfo describes one compiled contrast.
type ContrastInfo struct {
	Index   int       `json:"index" yaml:"index"`
	Title   string    `json:"title" yaml:"title"`
	Weights []float64 `json:"weights" yaml:"weights,flow"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a design and show its contrast matrix",
		Long: `Build and render the design exactly as compile would, without writing a
file or running feat_model. Prints the EVs and the contrast matrix.

Output adapts to environment:
  - Terminal: table output
  - Piped/Scripted: Markdown format

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Check featdesign.yaml
  featdesign check

  # Check and show the rendered design
  featdesign check --design

  # Contrast matrix as JSON
  featdesign check --output json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	addDesignFlags(cmd)
	cmd.Flags().Bool("design", false, "also print the rendered design")
	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	dc, err := designFromFlags(cmd, cmdCtx.Cfg)
	if err != nil {
		return err
	}

	// check never records a run, so the engine gets no history
	eng, err := engine.New(engine.Config{Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	res, err := eng.Check(dc, cmdCtx.Cfg.Template)
	if err != nil {
		return err
	}

	out := buildCheckOutput(res.Design)
	if show, _ := cmd.Flags().GetBool("design"); show {
		out.Design = res.Content
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Encode(out)
	}
	printCheck(r, out)
	return nil
}

func buildCheckOutput(d *design.Design) CheckOutput {
	evs := d.EVs()
	cons := d.Contrasts()
	out := CheckOutput{
		EVCount:       len(evs),
		ContrastCount: len(cons),
		EVs:           make([]EVInfo, 0, len(evs)),
		Contrasts:     make([]ContrastInfo, 0, len(cons)),
	}
	for i, ev := range evs {
		out.EVs = append(out.EVs, EVInfo{
			Index:  i + 1,
			Title:  ev.Title,
			File:   ev.SourcePath,
			Model:  ev.Model.String(),
			Filter: ev.ApplyFilter,
		})
	}
	for i, c := range cons {
		out.Contrasts = append(out.Contrasts, ContrastInfo{Index: i + 1, Title: c.Title, Weights: c.Weights})
	}
	return out
}

func printCheck(r *Renderer, out CheckOutput) {
	r.Header("EVs")
	evRows := make([]table.Row, 0, len(out.EVs))
	for _, ev := range out.EVs {
		evRows = append(evRows, table.Row{ev.Index, ev.Title, ev.Model, ev.Filter, ev.File})
	}
	r.Table(table.Row{"#", "Title", "Model", "Filter", "File"}, evRows)

	r.Header("Contrasts")
	header := table.Row{"#", "Title"}
	for _, ev := range out.EVs {
		header = append(header, ev.Title)
	}
	conRows := make([]table.Row, 0, len(out.Contrasts))
	for _, c := range out.Contrasts {
		row := table.Row{c.Index, c.Title}
		for _, w := range c.Weights {
			row = append(row, strconv.FormatFloat(w, 'g', -1, 64))
		}
		conRows = append(conRows, row)
	}
	r.Table(header, conRows)

	if out.Design != "" {
		r.Header("Design")
		r.Println(out.Design)
	}
}
