package validate

import (
	"testing"

	"github.com/rpax-dev/rpax/internal/callgraph"
	"github.com/rpax-dev/rpax/internal/invocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		ManifestPresent:     true,
		WorkflowIndexBytes:  []byte(`{}`),
		InvocationsBytes:    []byte(`{}`),
		Manifest:            Manifest{GeneratorVersion: "1.0.0", SchemaVersion: "1", GeneratedAt: "2026-07-30T00:00:00Z"},
		EntryPointPaths:     []string{"Main"},
		DefaultEntryPoint:   "Main",
		DiscoveredWorkflows: []string{"Main"},
		WorkflowArguments:   map[string]bool{"Main": true},
	}
}

func TestRun_AllPass(t *testing.T) {
	result := Run(validInput())
	assert.Equal(t, SeverityPass, result.Status)
	assert.Equal(t, 0, result.ExitCode())
}

func TestRun_MissingArtifactsFails(t *testing.T) {
	in := validInput()
	in.ManifestPresent = false
	result := Run(in)
	assert.Equal(t, SeverityFail, result.Status)
	assert.Equal(t, 1, result.ExitCode())
}

func TestRun_MissingProvenanceFails(t *testing.T) {
	in := validInput()
	in.Manifest.GeneratorVersion = ""
	result := Run(in)
	assert.Equal(t, SeverityFail, result.Status)
}

func TestRun_UnresolvableEntryPointFails(t *testing.T) {
	in := validInput()
	in.EntryPointPaths = []string{"Ghost"}
	result := Run(in)
	assert.Equal(t, SeverityFail, result.Status)
}

func TestRun_ReferentialIntegrity_MissingTargetWarns(t *testing.T) {
	in := validInput()
	in.Edges = []invocation.Edge{{SourceWorkflowID: "Main", Kind: invocation.KindStatic, TargetWorkflowID: "Ghost"}}
	result := Run(in)
	assert.Equal(t, SeverityWarn, result.Status)
}

func TestRun_ReferentialIntegrity_MissingSourceFails(t *testing.T) {
	in := validInput()
	in.Edges = []invocation.Edge{{SourceWorkflowID: "Ghost", Kind: invocation.KindStatic, TargetWorkflowID: "Main"}}
	result := Run(in)
	assert.Equal(t, SeverityFail, result.Status)
}

// TestRun_ReferentialIntegrity_UnresolvedInvocationWarns exercises the real
// unresolved-target scenario: an InvokeWorkflowFile pointing at a path no
// discovered workflow matches resolves to KindMissing (never KindStatic with
// an empty-but-dangling target), and must still be flagged.
func TestRun_ReferentialIntegrity_UnresolvedInvocationWarns(t *testing.T) {
	in := validInput()
	in.Edges = []invocation.Edge{{SourceWorkflowID: "Main", Kind: invocation.KindMissing, RawTarget: "DoesNotExist.xaml"}}
	result := Run(in)
	assert.Equal(t, SeverityWarn, result.Status)

	var found bool
	for _, issue := range result.Issues {
		if issue.Rule == "referential-integrity" && issue.Severity == SeverityWarn {
			found = true
			assert.Contains(t, issue.Message, "DoesNotExist.xaml")
		}
	}
	assert.True(t, found, "expected a referential-integrity warn issue for the unresolved target")
}

func TestRun_CycleDetection_WarnsByDefault(t *testing.T) {
	in := validInput()
	in.Cycles = []callgraph.Cycle{{Kind: callgraph.CycleSelf, Workflows: []string{"Main"}}}
	result := Run(in)
	assert.Equal(t, SeverityWarn, result.Status)
}

func TestRun_CycleDetection_FailsWhenConfigured(t *testing.T) {
	in := validInput()
	in.Cycles = []callgraph.Cycle{{Kind: callgraph.CycleSelf, Workflows: []string{"Main"}}}
	in.FailOnCycles = true
	result := Run(in)
	assert.Equal(t, SeverityFail, result.Status)
}

func TestRun_ArgumentsPresence_SkippedWhenParseErrorsExist(t *testing.T) {
	in := validInput()
	in.WorkflowArguments = map[string]bool{}
	in.ParseErrors = []string{"Main.xaml: malformed document"}
	result := Run(in)
	require.NotEmpty(t, result.Issues)
	for _, issue := range result.Issues {
		if issue.Rule == "arguments-presence" {
			assert.Equal(t, SeverityPass, issue.Severity)
		}
	}
}
