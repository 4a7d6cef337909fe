package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeForLocalMatch(t *testing.T) {
	assert.Equal(t, "My.Framework", SanitizeForLocalMatch("My Framework"))
	assert.Equal(t, "My_Framework-2", SanitizeForLocalMatch("My_Framework-2"))
	assert.Equal(t, "Café.Lib", SanitizeForLocalMatch("Café Lib"))
}

func TestAnalyze_VendorPrefixWins(t *testing.T) {
	declared := map[string]string{"UiPath.Excel.Activities": "2.1.0"}
	usages := Analyze(declared, nil, Cache{}, nil)
	require.Len(t, usages, 1)
	assert.Equal(t, ClassVendorOfficial, usages[0].Class)
	assert.True(t, usages[0].Declared)
}

func TestAnalyze_CachedDecisionBeatsAmbiguous(t *testing.T) {
	declared := map[string]string{"Acme.Shared": "1.0.0"}
	cache := Cache{Decisions: map[string]Classification{"Acme.Shared": ClassThirdParty}}
	usages := Analyze(declared, nil, cache, nil)
	require.Len(t, usages, 1)
	assert.Equal(t, ClassThirdParty, usages[0].Class)
}

func TestAnalyze_UndeclaredButUsedIsAmbiguousWithoutLocalMatch(t *testing.T) {
	perWorkflow := map[string][]string{"Main": {"Some.Unknown.Package"}}
	usages := Analyze(nil, perWorkflow, Cache{}, nil)
	require.Len(t, usages, 1)
	assert.False(t, usages[0].Declared)
	assert.True(t, usages[0].Used)
	assert.Equal(t, ClassAmbiguous, usages[0].Class)
	assert.Equal(t, []string{"Main"}, usages[0].Workflows)
}

func TestAnalyze_DeclaredAndUsedMerge(t *testing.T) {
	declared := map[string]string{"Shared.Lib": "1.0.0"}
	perWorkflow := map[string][]string{"Main": {"Shared.Lib"}, "Sub": {"Shared.Lib"}}
	usages := Analyze(declared, perWorkflow, Cache{}, nil)
	require.Len(t, usages, 1)
	assert.True(t, usages[0].Declared)
	assert.True(t, usages[0].Used)
	assert.Equal(t, []string{"Main", "Sub"}, usages[0].Workflows)
}

func TestLoadCache_MissingFileYieldsEmptyCache(t *testing.T) {
	c, err := LoadCache("/nonexistent/packages.cache.json")
	require.NoError(t, err)
	assert.NotNil(t, c.Decisions)
	assert.Empty(t, c.Decisions)
}

func TestAnalyze_ResultsSortedByName(t *testing.T) {
	declared := map[string]string{"Zebra.Pkg": "1.0.0", "Alpha.Pkg": "1.0.0"}
	usages := Analyze(declared, nil, Cache{}, nil)
	require.Len(t, usages, 2)
	assert.Equal(t, "Alpha.Pkg", usages[0].Name)
	assert.Equal(t, "Zebra.Pkg", usages[1].Name)
}
