package commands

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/featdesign/internal/cli/config"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/spf13/cobra"
)

// addDesignFlags registers the flags that describe a design. Scalar flags
// override the config file through the loader; --stim, --glt and --gltfile
// are appended to the config file's declarations by designFromFlags.
func addDesignFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("input", "i", "", "4D functional data")
	f.StringP("outdir", "o", "", "FEAT output directory")
	f.Float64("tr", 0, "repetition time in seconds")
	f.Float64("high-pass", design.DefaultHighPass, "high-pass filter cutoff in seconds")
	f.Bool("apply-filter", false, "apply the high-pass filter to the data")
	f.Int("npts", 0, "total number of volumes (0 leaves it to the template)")
	f.Bool("prewhiten", false, "use FILM prewhitening")
	f.String("confounds", "", "confound EV text file")
	f.StringArray("stim", nil, "EV as NAME:FILE:PARAMS, e.g. bio:bio.txt:model=gamma,filter=true (repeatable)")
	f.StringArray("glt", nil, `contrast as NAME:EXPR, e.g. "bio-phys:SYM: +bio -phys" (repeatable)`)
	f.String("gltfile", "", "CSV of literal contrasts: title, then one weight per EV")
	f.String("template", "", "custom design template (default: built-in first-level template)")

	_ = cmd.RegisterFlagCompletionFunc("stim", cobra.NoFileCompletions)
	_ = cmd.RegisterFlagCompletionFunc("glt", cobra.NoFileCompletions)
	_ = cmd.MarkFlagFilename("gltfile", "csv", "txt")
	_ = cmd.MarkFlagFilename("template", "fsf")
}

// addRunFlags registers the flags that control writing and running.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("outfile", "", "design file to write (default: a temporary file removed after the run)")
	f.Bool("no-run", false, "write the design without running feat_model")
	f.String("feat-model", config.DefaultFeatModel, "feat_model program to run")
}

// designFromFlags returns cfg's design with the command-line EVs and
// contrasts appended after the ones from the config file.
func designFromFlags(cmd *cobra.Command, cfg *config.Config) (config.DesignConfig, error) {
	dc := cfg.DesignConfig
	dc.EVs = slices.Clone(dc.EVs)
	dc.Contrasts = slices.Clone(dc.Contrasts)

	stims, _ := cmd.Flags().GetStringArray("stim")
	for _, s := range stims {
		ev, err := config.ParseStim(s)
		if err != nil {
			return dc, err
		}
		dc.EVs = append(dc.EVs, ev)
	}

	glts, _ := cmd.Flags().GetStringArray("glt")
	gltFile, _ := cmd.Flags().GetString("gltfile")
	if len(glts) > 0 && gltFile != "" {
		return dc, fmt.Errorf("%w: --glt and --gltfile cannot be combined", design.ErrValidation)
	}
	for _, g := range glts {
		c, err := config.ParseGLT(g)
		if err != nil {
			return dc, err
		}
		dc.Contrasts = append(dc.Contrasts, c)
	}
	if gltFile != "" {
		contrasts, err := config.LoadGLTFile(gltFile)
		if err != nil {
			return dc, err
		}
		dc.Contrasts = append(dc.Contrasts, contrasts...)
	}

	return dc, nil
}
