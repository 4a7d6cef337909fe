package lake

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpax-dev/rpax/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_AtomicAndReadable(t *testing.T) {
	dir := testutil.TempProjectDir(t, nil)
	l, err := Open(dir)
	require.NoError(t, err)

	err = l.WriteJSON("proj/manifest.json", map[string]string{"name": "Main"}, true)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "proj/manifest.json"))
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Main", out["name"])

	_, err = os.Stat(filepath.Join(dir, "proj/manifest.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful write")
}

func TestWriteJSONLines_OneObjectPerLine(t *testing.T) {
	dir := testutil.TempProjectDir(t, nil)
	l, err := Open(dir)
	require.NoError(t, err)

	items := []any{map[string]int{"a": 1}, map[string]int{"a": 2}}
	require.NoError(t, l.WriteJSONLines("proj/invocations.jsonl", items))

	data, err := os.ReadFile(filepath.Join(dir, "proj/invocations.jsonl"))
	require.NoError(t, err)
	lines := splitLines(string(data))
	require.Len(t, lines, 2)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func TestProjectDir(t *testing.T) {
	l := &Lake{Root: "/lake"}
	assert.Equal(t, "/lake/acme-ab12cd34ef", l.ProjectDir("acme-ab12cd34ef"))
}
