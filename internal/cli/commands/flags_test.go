package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/featdesign/internal/cli/config"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addDesignFlags(cmd)
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func baseConfig() *config.Config {
	gamma := design.ModelGamma
	return &config.Config{DesignConfig: config.DesignConfig{
		EVs:       []config.EVConfig{{Title: "bio", File: "bio.txt", Model: &gamma}},
		Contrasts: []config.ContrastConfig{{Title: "bio", Expr: "+bio"}},
	}}
}

func TestDesignFromFlags_AppendsAfterConfig(t *testing.T) {
	cfg := baseConfig()
	cmd := newFlagCommand(t,
		"--stim", "phys:phys.txt:model=double-gamma",
		"--glt", "bio>phys:SYM: +bio -phys",
	)

	dc, err := designFromFlags(cmd, cfg)
	require.NoError(t, err)

	require.Len(t, dc.EVs, 2)
	assert.Equal(t, "bio", dc.EVs[0].Title)
	assert.Equal(t, "phys", dc.EVs[1].Title)
	assert.Equal(t, design.ModelDoubleGamma, *dc.EVs[1].Model)

	require.Len(t, dc.Contrasts, 2)
	assert.Equal(t, "bio>phys", dc.Contrasts[1].Title)
	assert.Equal(t, "SYM: +bio -phys", dc.Contrasts[1].Expr)

	assert.Len(t, cfg.EVs, 1, "config declarations are not modified")
	assert.Len(t, cfg.Contrasts, 1)
}

func TestDesignFromFlags_GLTFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contrasts.csv")
	require.NoError(t, os.WriteFile(path, []byte("# title, bio\nall, 1\n"), 0o644))

	dc, err := designFromFlags(newFlagCommand(t, "--gltfile", path), baseConfig())
	require.NoError(t, err)
	require.Len(t, dc.Contrasts, 2)
	assert.Equal(t, "all", dc.Contrasts[1].Title)
	assert.Equal(t, []float64{1}, dc.Contrasts[1].Weights)
}

func TestDesignFromFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"glt and gltfile", []string{"--glt", "a:+bio", "--gltfile", "c.csv"}},
		{"malformed stim", []string{"--stim", "phys"}},
		{"malformed glt", []string{"--glt", "nocolon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := designFromFlags(newFlagCommand(t, tt.args...), baseConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, design.ErrValidation)
		})
	}

	_, err := designFromFlags(newFlagCommand(t, "--gltfile", filepath.Join(t.TempDir(), "missing.csv")), baseConfig())
	assert.Error(t, err)
}
