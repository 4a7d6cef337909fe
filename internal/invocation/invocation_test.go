package invocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_StaticExactMatch(t *testing.T) {
	r := NewResolver([]string{"Main", "Framework/Init"})
	edge := r.Resolve("Main", "Sequence/If/InvokeWorkflowFile", `Framework\Init.xaml`)
	assert.Equal(t, KindStatic, edge.Kind)
	assert.Equal(t, "Framework/Init", edge.TargetWorkflowID)
	assert.False(t, edge.TieBroken)
}

func TestResolve_Missing(t *testing.T) {
	r := NewResolver([]string{"Main"})
	edge := r.Resolve("Main", "n1", "DoesNotExist.xaml")
	assert.Equal(t, KindMissing, edge.Kind)
	assert.Empty(t, edge.TargetWorkflowID)
}

func TestResolve_Coded(t *testing.T) {
	r := NewResolver([]string{"Main"})
	edge := r.Resolve("Main", "n1", "Handlers/Foo.cs")
	assert.Equal(t, KindCoded, edge.Kind)
}

func TestResolve_Dynamic(t *testing.T) {
	r := NewResolver([]string{"Main"})
	edge := r.Resolve("Main", "n1", `[workflowNameVar + ".xaml"]`)
	assert.Equal(t, KindDynamic, edge.Kind)
}

func TestResolve_BasenameTieBreakPrefersShortestThenLexicographic(t *testing.T) {
	r := NewResolver([]string{"Sub/Deep/Nested/Init", "Framework/Init", "Zeta/Init"})
	edge := r.Resolve("Main", "n1", "Init.xaml")
	assert.Equal(t, KindStatic, edge.Kind)
	assert.True(t, edge.TieBroken)
	// "Zeta/Init" (9 chars) is shorter than "Framework/Init" (14 chars).
	assert.Equal(t, "Zeta/Init", edge.TargetWorkflowID)
}

func TestResolve_CrossConventionPathSeparators(t *testing.T) {
	r := NewResolver([]string{"Framework/Init"})
	edge := r.Resolve("Main", "n1", `Framework\Init.xaml`)
	assert.Equal(t, KindStatic, edge.Kind)
	assert.Equal(t, "Framework/Init", edge.TargetWorkflowID)
}
