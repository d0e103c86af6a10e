package commands

import (
	"fmt"

	"github.com/leapstack-labs/featdesign/internal/engine"
	"github.com/spf13/cobra"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Write the FEAT design file and run feat_model on it",
		Long: `Build a first-level FEAT design from featdesign.yaml and the command line,
render it to an FSF design file and run feat_model on the result.

EVs from --stim and contrasts from --glt or --gltfile are appended to the
ones declared in the config file. All EVs are declared before any contrast.

Without --outfile the design goes to a temporary file that is removed once
feat_model finishes. With --no-run and no --outfile the design is printed.`,
		Example: `  # Two EVs and one symbolic contrast
  featdesign compile -i func.nii.gz -o out.feat --tr 2 \
    --stim bio:bio.txt:model=gamma --stim phys:phys.txt:model=gamma \
    --glt "bio-phys:SYM: +bio -phys" --outfile design.fsf

  # Everything from featdesign.yaml, without running feat_model
  featdesign compile --no-run --outfile design.fsf`,
		Args: cobra.NoArgs,
		RunE: runCompile,
	}

	addDesignFlags(cmd)
	addRunFlags(cmd)
	return cmd
}

func runCompile(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	dc, err := designFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	res, err := cmdCtx.Engine.Compile(cmd.Context(), dc, engine.Options{
		OutFile:  cfg.OutFile,
		Template: cfg.Template,
		NoRun:    cfg.NoRun,
	})
	if res != nil && !res.Temporary {
		cmdCtx.Logger.Debug("compile finished", "design", res.DesignPath, "run_id", res.RunID)
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Design written to %s\n", res.DesignPath)
	}
	if err != nil {
		return err
	}

	if res.Temporary && cfg.NoRun {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), res.Content)
	}
	return nil
}
