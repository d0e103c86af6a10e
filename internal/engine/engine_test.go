package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/featdesign/internal/cli/config"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/leapstack-labs/featdesign/internal/featmodel"
	"github.com/leapstack-labs/featdesign/internal/state"
	"github.com/leapstack-labs/featdesign/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bioPhysConfig() config.DesignConfig {
	gamma := design.ModelGamma
	return config.DesignConfig{
		Input:     "/data/func.nii.gz",
		OutputDir: "/data/out.feat",
		TR:        1,
		HighPass:  100,
		EVs: []config.EVConfig{
			{Title: "bio", File: "/data/bio.txt", Model: &gamma},
			{Title: "phys", File: "/data/phys.txt", Model: &gamma},
		},
		Contrasts: []config.ContrastConfig{
			{Title: "bio", Expr: "+bio"},
			{Title: "bio>phys", Expr: "SYM: +bio -phys"},
			{Title: "phys", Weights: []float64{0, 1}},
		},
	}
}

func newTestEngine(t *testing.T, runner *featmodel.Runner) (*Engine, *state.SQLiteStore) {
	t.Helper()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))

	eng, err := New(Config{Store: store, Runner: runner, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, store
}

func TestBuild(t *testing.T) {
	d, err := Build(bioPhysConfig())
	require.NoError(t, err)

	evs := d.EVs()
	require.Len(t, evs, 2)
	assert.True(t, evs[0].ApplyFilter, "filter defaults to true")

	cons := d.Contrasts()
	require.Len(t, cons, 3)
	assert.Equal(t, []float64{1, 0}, cons[0].Weights)
	assert.Equal(t, []float64{1, -1}, cons[1].Weights)
	assert.Equal(t, []float64{0, 1}, cons[2].Weights)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.DesignConfig)
		kind   error
		substr string
	}{
		{"no EVs", func(c *config.DesignConfig) { c.EVs = nil }, design.ErrValidation, "at least one EV"},
		{"no contrasts", func(c *config.DesignConfig) { c.Contrasts = nil }, design.ErrValidation, "at least one contrast"},
		{"missing TR", func(c *config.DesignConfig) { c.TR = 0 }, design.ErrValidation, "tr"},
		{"derivative", func(c *config.DesignConfig) { c.EVs[1].Derivative = true }, design.ErrUnsupportedFeature, `ev "phys"`},
		{"duplicate EV", func(c *config.DesignConfig) { c.EVs[1].Title = "bio" }, design.ErrValidation, `ev "bio"`},
		{"unknown EV in contrast", func(c *config.DesignConfig) {
			c.Contrasts = append(c.Contrasts, config.ContrastConfig{Title: "x", Expr: "+motor"})
		}, design.ErrUnresolvedReference, `contrast "x"`},
		{"short weights", func(c *config.DesignConfig) {
			c.Contrasts[2].Weights = []float64{1}
		}, design.ErrValidation, `contrast "phys"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := bioPhysConfig()
			tt.modify(&cfg)
			_, err := Build(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestEngine_Check(t *testing.T) {
	eng, store := newTestEngine(t, nil)

	res, err := eng.Check(bioPhysConfig(), "")
	require.NoError(t, err)
	assert.Contains(t, res.Content, `set fmri(evtitle2) "phys"`)
	assert.Empty(t, res.DesignPath)

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "check records nothing")
}

func TestEngine_CompileNoRun(t *testing.T) {
	eng, store := newTestEngine(t, &featmodel.Runner{Binary: "/nonexistent/feat_model"})
	out := filepath.Join(t.TempDir(), "sub", "design.fsf")

	res, err := eng.Compile(context.Background(), bioPhysConfig(), Options{OutFile: out, NoRun: true})
	require.NoError(t, err)
	assert.Nil(t, res.Model)
	assert.False(t, res.Temporary)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(written))

	run, err := store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusRendered, run.Status)
	assert.Equal(t, out, run.DesignPath)
	assert.Equal(t, 2, run.EVCount)
	assert.Equal(t, 3, run.ContrastCount)
	assert.NotNil(t, run.CompletedAt)
}

func TestEngine_CompileRunsFeatModel(t *testing.T) {
	seen := filepath.Join(t.TempDir(), "seen.fsf")
	bin := testutil.FakeBinary(t, `cp "$1" "`+seen+`"`)
	eng, store := newTestEngine(t, &featmodel.Runner{Binary: bin})
	t.Setenv("TMPDIR", t.TempDir())

	res, err := eng.Compile(context.Background(), bioPhysConfig(), Options{})
	require.NoError(t, err)
	require.NotNil(t, res.Model)
	assert.True(t, res.Model.Succeeded())
	assert.True(t, res.Temporary)
	assert.True(t, strings.HasPrefix(filepath.Base(res.DesignPath), "tmp_design"))

	_, err = os.Stat(res.DesignPath)
	assert.True(t, os.IsNotExist(err), "temporary design is removed after the run")

	copied, err := os.ReadFile(seen)
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(copied), "feat_model saw the rendered design")

	run, err := store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusSucceeded, run.Status)
	require.NotNil(t, run.ExitCode)
	assert.Equal(t, 0, *run.ExitCode)
}

func TestEngine_CompileModelFails(t *testing.T) {
	bin := testutil.FakeBinary(t, "exit 4")
	eng, store := newTestEngine(t, &featmodel.Runner{Binary: bin})
	out := filepath.Join(t.TempDir(), "design.fsf")

	res, err := eng.Compile(context.Background(), bioPhysConfig(), Options{OutFile: out})
	require.Error(t, err)

	var exitErr *ModelExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.ExitCode)
	assert.Equal(t, bin+" exited with code 4", exitErr.Error())
	require.NotNil(t, res)

	_, statErr := os.Stat(out)
	assert.NoError(t, statErr, "named designs are kept")

	run, err := store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusFailed, run.Status)
	assert.Equal(t, 4, *run.ExitCode)
	assert.Contains(t, run.Error, "exited with code 4")
}

func TestEngine_CompileMissingBinary(t *testing.T) {
	eng, store := newTestEngine(t, &featmodel.Runner{Binary: filepath.Join(t.TempDir(), "feat_model")})

	res, err := eng.Compile(context.Background(), bioPhysConfig(), Options{OutFile: filepath.Join(t.TempDir(), "d.fsf")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locate")

	run, err := store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusFailed, run.Status)
	assert.Nil(t, run.ExitCode)
}

func TestEngine_CompileInvalidWritesNothing(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	out := filepath.Join(t.TempDir(), "design.fsf")

	cfg := bioPhysConfig()
	cfg.Contrasts[0].Expr = "+bio -nope"
	_, err := eng.Compile(context.Background(), cfg, Options{OutFile: out, NoRun: true})
	assert.ErrorIs(t, err, design.ErrUnresolvedReference)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestNew_StatePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	eng, err := New(Config{StatePath: path})
	require.NoError(t, err)
	require.NotNil(t, eng.GetStateStore())
	require.NoError(t, eng.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNew_HistoryDisabled(t *testing.T) {
	eng, err := New(Config{})
	require.NoError(t, err)
	assert.Nil(t, eng.GetStateStore())

	res, err := eng.Compile(context.Background(), bioPhysConfig(),
		Options{OutFile: filepath.Join(t.TempDir(), "d.fsf"), NoRun: true})
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
	assert.NoError(t, eng.Close())
}
