// Package testutil provides scratch-directory helpers shared by the
// analysis packages' tests, adapted from the teacher's pkg/testutil
// temp-directory helper.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempProjectDir creates a temporary directory and writes files into it,
// one entry per relative path -> content, creating parent directories as
// needed. It is the shared fixture-writing helper for discovery, parsing,
// and lake-writer tests that need a small project tree on disk.
func TempProjectDir(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}
