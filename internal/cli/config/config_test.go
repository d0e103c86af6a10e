package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
input: /data/func.nii.gz
outdir: /data/out.feat
tr: 2
npts: 240
apply_filter: true
confounds: /data/motion.txt
state_path: history.db
watch_debounce: 250ms
evs:
  - title: bio
    file: /data/bio.txt
    model: gamma
  - title: phys
    file: /data/phys.txt
    model: 3
    filter: false
contrasts:
  - title: bio>phys
    expr: "+bio -phys"
  - title: phys
    weights: [0, 1]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "featdesign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("input", "", "")
	flags.Float64("tr", 0, "")
	flags.Float64("high-pass", 0, "")
	flags.Bool("no-run", false, "")
	flags.String("state", "", "")
	flags.String("output", "", "")
	flags.StringArray("stim", nil, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, design.DefaultHighPass, cfg.HighPass)
	assert.Equal(t, DefaultFeatModel, cfg.FeatModel)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultWatchDebounce, cfg.WatchDebounce)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Empty(t, cfg.EVs)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, sampleConfig)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())

	assert.Equal(t, "/data/func.nii.gz", cfg.Input)
	assert.Equal(t, "/data/out.feat", cfg.OutputDir)
	assert.Equal(t, 2.0, cfg.TR)
	assert.Equal(t, 240, cfg.Volumes)
	assert.True(t, cfg.ApplyFilter)
	assert.Equal(t, "/data/motion.txt", cfg.Confounds)
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "history.db"), cfg.StatePath)

	require.Len(t, cfg.EVs, 2)
	require.NotNil(t, cfg.EVs[0].Model)
	assert.Equal(t, design.ModelGamma, *cfg.EVs[0].Model)
	assert.Nil(t, cfg.EVs[0].Filter)
	assert.Equal(t, design.ModelDoubleGamma, *cfg.EVs[1].Model)
	require.NotNil(t, cfg.EVs[1].Filter)
	assert.False(t, *cfg.EVs[1].Filter)

	require.Len(t, cfg.Contrasts, 2)
	assert.Equal(t, ContrastConfig{Title: "bio>phys", Expr: "+bio -phys"}, cfg.Contrasts[0])
	assert.Equal(t, []float64{0, 1}, cfg.Contrasts[1].Weights)

	require.NoError(t, cfg.DesignConfig.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, sampleConfig)
	t.Setenv("FEATDESIGN_TR", "2.5")
	t.Setenv("FEATDESIGN_HIGH_PASS", "60")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.TR, "env overrides file")
	assert.Equal(t, 60.0, cfg.HighPass, "env overrides defaults")

	ResetConfig()
	cfg, err = LoadConfig(path, testFlags(t, "--tr", "3", "--no-run"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.TR, "flags override env")
	assert.Equal(t, 60.0, cfg.HighPass, "unchanged flags do not override")
	assert.True(t, cfg.NoRun)
}

func TestLoadConfig_FlagPathsRelativeToWorkingDir(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, sampleConfig)
	cwd := t.TempDir()
	t.Chdir(cwd)

	cfg, err := LoadConfig(path, testFlags(t, "--state", "runs.db"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "runs.db"), cfg.StatePath)

	ResetConfig()
	cfg, err = LoadConfig(path, testFlags(t, "--state", ":memory:"))
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_DeclarationFlagsIgnored(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, sampleConfig)

	cfg, err := LoadConfig(path, testFlags(t, "--stim", "x:/x.txt:model=gamma"))
	require.NoError(t, err)
	assert.Len(t, cfg.EVs, 2, "--stim is merged by the compile command, not the loader")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{
			name:      "unknown EV key",
			content:   "evs:\n  - title: a\n    model: gamma\n    modle: gamma\n",
			errSubstr: "modle",
		},
		{
			name:      "unknown contrast key",
			content:   "contrasts:\n  - title: c\n    weight: [1]\n",
			errSubstr: "weight",
		},
		{
			name:      "bad model name",
			content:   "evs:\n  - title: a\n    model: gama\n",
			errSubstr: "gama",
		},
		{
			name:      "model code out of range",
			content:   "evs:\n  - title: a\n    model: 9\n",
			errSubstr: "9",
		},
		{
			name:      "bad output format",
			content:   "output: html\n",
			errSubstr: "unknown format",
		},
		{
			name:      "bad log format",
			content:   "log_format: xml\n",
			errSubstr: "log_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, design.ErrValidation)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestDesignConfig_Validate(t *testing.T) {
	gamma := design.ModelGamma
	valid := DesignConfig{
		EVs:       []EVConfig{{Title: "a", Model: &gamma}},
		Contrasts: []ContrastConfig{{Title: "c", Expr: "a"}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name      string
		modify    func(*DesignConfig)
		errSubstr string
	}{
		{"no EVs", func(d *DesignConfig) { d.EVs = nil }, "at least one EV"},
		{"no contrasts", func(d *DesignConfig) { d.Contrasts = nil }, "at least one contrast"},
		{"missing model", func(d *DesignConfig) { d.EVs = []EVConfig{{Title: "a"}} }, "model is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.modify(&d)
			err := d.Validate()
			assert.ErrorIs(t, err, design.ErrValidation)
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestEVConfig_ToEV(t *testing.T) {
	gamma := design.ModelGamma
	off := false

	ev := EVConfig{Title: "a", File: "/a.txt", Model: &gamma}.ToEV()
	assert.Equal(t, design.EV{Title: "a", SourcePath: "/a.txt", Model: design.ModelGamma, ApplyFilter: true}, ev)

	ev = EVConfig{Title: "a", Model: &gamma, Filter: &off, Derivative: true}.ToEV()
	assert.False(t, ev.ApplyFilter)
	assert.True(t, ev.Derivative)
}
