package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidDocument(t *testing.T) {
	data := []byte(`{
		"project": {"name": "AcmeBot", "type": "process"},
		"scan": {"exclude": ["**/bin/**", "**/obj/**"]},
		"validation": {"fail_on_cycles": true}
	}`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "AcmeBot", cfg.Project.Name)
	assert.Equal(t, []string{"**/bin/**", "**/obj/**"}, cfg.Scan.Exclude)
	assert.True(t, cfg.Validation.FailOnCycles)
	// Defaults still apply for untouched sections.
	assert.Equal(t, ".rpax-lake", cfg.Output.Dir)
}

func TestParse_UnknownTopLevelKeyRejected(t *testing.T) {
	data := []byte(`{"unknownSection": {}}`)
	_, err := Parse(data)
	assert.Error(t, err)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestLoad_SearchesUpwardFromCWD(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	configPath := filepath.Join(root, DefaultFileName)
	require.NoError(t, os.WriteFile(configPath, []byte(`{"project": {"name": "FoundMe"}}`), 0o644))

	cfg, foundAt, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "FoundMe", cfg.Project.Name)
	assert.Equal(t, configPath, foundAt)
}

func TestLoad_NoFileFallsBackToDefault(t *testing.T) {
	root := t.TempDir()
	cfg, foundAt, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "", foundAt)
	assert.Equal(t, Default(), cfg)
}
