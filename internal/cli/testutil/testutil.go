// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// ProjectConfig is the featdesign.yaml written by SetupTestProject.
const ProjectConfig = `input: /data/func.nii.gz
outdir: /data/out.feat
tr: 1
npts: 240
evs:
  - title: bio
    file: bio.txt
    model: gamma
  - title: phys
    file: phys.txt
    model: double-gamma
contrasts:
  - title: bio
    expr: "+bio"
  - title: bio>phys
    expr: "SYM: +bio -phys"
`

// SetupTestProject creates a temporary project with a featdesign.yaml and
// two EV timing files, changes into it, and returns its path.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	files := map[string]string{
		"featdesign.yaml": ProjectConfig,
		"bio.txt":         "0 30 1\n60 30 1\n",
		"phys.txt":        "30 30 1\n90 30 1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	t.Chdir(tmpDir)
	return tmpDir
}

// Result is the captured outcome of one command execution.
type Result struct {
	Out    string
	ErrOut string
	Err    error
}

// Execute runs cmd with args and captures its output.
func Execute(ctx context.Context, cmd *cobra.Command, args ...string) Result {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return Result{Out: out.String(), ErrOut: errOut.String(), Err: err}
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
