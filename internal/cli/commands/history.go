package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/featdesign/internal/state"
	"github.com/spf13/cobra"
)

// RunInfo is the structured form of one recorded run.
type RunInfo struct {
	ID            string     `json:"id" yaml:"id"`
	Status        string     `json:"status" yaml:"status"`
	ExitCode      *int       `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	DesignPath    string     `json:"design_path" yaml:"design_path"`
	InputFile     string     `json:"input_file" yaml:"input_file"`
	OutputDir     string     `json:"output_dir" yaml:"output_dir"`
	EVCount       int        `json:"ev_count" yaml:"ev_count"`
	ContrastCount int        `json:"contrast_count" yaml:"contrast_count"`
	StartedAt     time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded compilations",
		Long: `Show the designs compiled so far, newest first, with the feat_model
outcome of each. Pass a run ID to show a single run.

The history lives in state_path (default .featdesign/history.db).`,
		Example: `  # Last 20 runs
  featdesign history

  # Every run, as JSON
  featdesign history --limit 0 --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cmdCtx.Engine.GetStateStore()
	if store == nil {
		return fmt.Errorf("run history is disabled (state_path is empty)")
	}

	var runs []*state.Run
	if len(args) == 1 {
		run, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		runs = []*state.Run{run}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		if runs, err = store.ListRuns(cmd.Context(), limit); err != nil {
			return err
		}
	}

	infos := make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, toRunInfo(run))
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Encode(infos)
	}
	if len(infos) == 0 {
		r.Println("No runs recorded.")
		return nil
	}

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		exit := "-"
		if info.ExitCode != nil {
			exit = strconv.Itoa(*info.ExitCode)
		}
		rows = append(rows, table.Row{
			shortID(info.ID),
			info.Status,
			exit,
			info.EVCount,
			info.ContrastCount,
			info.StartedAt.Local().Format(time.DateTime),
			info.DesignPath,
		})
	}
	r.Header(fmt.Sprintf("Runs (%d)", len(infos)))
	r.Table(table.Row{"ID", "Status", "Exit", "EVs", "Contrasts", "Started", "Design"}, rows)
	return nil
}

func toRunInfo(run *state.Run) RunInfo {
	return RunInfo{
		ID:            run.ID,
		Status:        string(run.Status),
		ExitCode:      run.ExitCode,
		DesignPath:    run.DesignPath,
		InputFile:     run.InputFile,
		OutputDir:     run.OutputDir,
		EVCount:       run.EVCount,
		ContrastCount: run.ContrastCount,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		Error:         run.Error,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
