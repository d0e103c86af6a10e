package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeBinary writes an executable shell script named feat_model into a
// fresh temporary directory and returns its path. The test is skipped on
// platforms that cannot run shell scripts.
func FakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "feat_model")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755)) //nolint:gosec // test script must be executable
	return path
}
