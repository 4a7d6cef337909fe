// Package validate runs the default rule pipeline over an emitted lake's
// artifact set, producing pass/warn/fail issues per rule and an aggregate
// status.
package validate

import (
	"sort"

	"github.com/rpax-dev/rpax/internal/callgraph"
	"github.com/rpax-dev/rpax/internal/invocation"
)

// Severity is one issue's outcome level.
type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

var severityRank = map[Severity]int{SeverityPass: 0, SeverityWarn: 1, SeverityFail: 2}

// Issue is one rule's finding.
type Issue struct {
	Rule     string
	Severity Severity
	Message  string
	Artifact string
	JSONPath string
}

// Manifest is the minimal provenance shape rule 2 checks for.
type Manifest struct {
	GeneratorVersion string
	SchemaVersion    string
	GeneratedAt      string
}

// Input bundles everything the default rule set inspects. Any artifact
// left zero-valued is treated as absent for the presence rule.
type Input struct {
	ManifestPresent     bool
	WorkflowIndexBytes  []byte
	InvocationsBytes    []byte
	Manifest            Manifest
	EntryPointPaths     []string
	DefaultEntryPoint   string
	DiscoveredWorkflows []string
	WorkflowArguments   map[string]bool // workflow ID -> arguments extracted
	ParseErrors         []string
	Edges               []invocation.Edge
	Cycles              []callgraph.Cycle
	FailOnCycles        bool
}

// Result is the outcome of running the full rule pipeline.
type Result struct {
	Issues []Issue
	Status Severity
}

// ExitCode maps the aggregate status to the documented process exit code.
func (r Result) ExitCode() int {
	if r.Status == SeverityFail {
		return 1
	}
	return 0
}

// Run executes the default rule set over in and returns the aggregate
// result, one issue per rule (pass, or the worst issue a rule found), except
// referential integrity, which reports one issue per offending edge.
func Run(in Input) Result {
	var issues []Issue
	issues = append(issues, ruleArtifactsPresence(in))
	issues = append(issues, ruleProvenance(in))
	issues = append(issues, ruleRootsResolvable(in))
	issues = append(issues, ruleReferentialIntegrity(in)...)
	issues = append(issues, ruleKindsBounded(in))
	issues = append(issues, ruleArgumentsPresence(in))
	issues = append(issues, ruleCycleDetection(in))

	status := SeverityPass
	for _, issue := range issues {
		if severityRank[issue.Severity] > severityRank[status] {
			status = issue.Severity
		}
	}
	return Result{Issues: issues, Status: status}
}

func ruleArtifactsPresence(in Input) Issue {
	if !in.ManifestPresent || len(in.WorkflowIndexBytes) == 0 || len(in.InvocationsBytes) == 0 {
		return Issue{Rule: "artifacts-presence", Severity: SeverityFail, Message: "one or more required artifacts missing or empty"}
	}
	return Issue{Rule: "artifacts-presence", Severity: SeverityPass}
}

func ruleProvenance(in Input) Issue {
	if in.Manifest.GeneratorVersion == "" || in.Manifest.SchemaVersion == "" || in.Manifest.GeneratedAt == "" {
		return Issue{Rule: "provenance", Severity: SeverityFail, Message: "manifest missing generator version, schema version, or generated-at timestamp", Artifact: "manifest.json"}
	}
	return Issue{Rule: "provenance", Severity: SeverityPass}
}

func ruleRootsResolvable(in Input) Issue {
	discovered := map[string]bool{}
	for _, w := range in.DiscoveredWorkflows {
		discovered[w] = true
	}
	for _, ep := range in.EntryPointPaths {
		if !discovered[ep] {
			return Issue{Rule: "roots-resolvable", Severity: SeverityFail, Message: "entry point workflow path not found in discovered set: " + ep}
		}
	}
	if in.DefaultEntryPoint != "" && !discovered[in.DefaultEntryPoint] {
		return Issue{Rule: "roots-resolvable", Severity: SeverityFail, Message: "default entry point not found: " + in.DefaultEntryPoint}
	}
	return Issue{Rule: "roots-resolvable", Severity: SeverityPass}
}

func ruleReferentialIntegrity(in Input) []Issue {
	known := map[string]bool{}
	for _, w := range in.DiscoveredWorkflows {
		known[w] = true
	}

	var issues []Issue
	for _, e := range in.Edges {
		switch e.Kind {
		case invocation.KindStatic:
			if !known[e.SourceWorkflowID] {
				issues = append(issues, Issue{Rule: "referential-integrity", Severity: SeverityFail, Message: "invocation source not in workflow index: " + e.SourceWorkflowID, Artifact: "invocations.jsonl"})
			}
			if e.TargetWorkflowID != "" && !known[e.TargetWorkflowID] {
				issues = append(issues, Issue{Rule: "referential-integrity", Severity: SeverityWarn, Message: "invocation target not in workflow index: " + e.TargetWorkflowID, Artifact: "invocations.jsonl"})
			}
		case invocation.KindMissing:
			if !known[e.SourceWorkflowID] {
				issues = append(issues, Issue{Rule: "referential-integrity", Severity: SeverityFail, Message: "invocation source not in workflow index: " + e.SourceWorkflowID, Artifact: "invocations.jsonl"})
			}
			issues = append(issues, Issue{Rule: "referential-integrity", Severity: SeverityWarn, Message: "invocation target unresolved: " + e.RawTarget, Artifact: "invocations.jsonl"})
		}
	}
	if len(issues) == 0 {
		return []Issue{{Rule: "referential-integrity", Severity: SeverityPass}}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Message < issues[j].Message })
	return issues
}

var allowedInvocationKinds = map[invocation.Kind]bool{
	invocation.KindStatic:  true,
	invocation.KindDynamic: true,
	invocation.KindMissing: true,
	invocation.KindCoded:   true,
}

func ruleKindsBounded(in Input) Issue {
	for _, e := range in.Edges {
		if !allowedInvocationKinds[e.Kind] {
			return Issue{Rule: "kinds-bounded", Severity: SeverityFail, Message: "invocation kind outside allowed enum: " + string(e.Kind)}
		}
	}
	return Issue{Rule: "kinds-bounded", Severity: SeverityPass}
}

func ruleArgumentsPresence(in Input) Issue {
	if len(in.ParseErrors) > 0 {
		return Issue{Rule: "arguments-presence", Severity: SeverityPass}
	}
	for _, ep := range in.EntryPointPaths {
		if !in.WorkflowArguments[ep] {
			return Issue{Rule: "arguments-presence", Severity: SeverityWarn, Message: "entry point has no extracted arguments: " + ep}
		}
	}
	return Issue{Rule: "arguments-presence", Severity: SeverityPass}
}

func ruleCycleDetection(in Input) Issue {
	if len(in.Cycles) == 0 {
		return Issue{Rule: "cycle-detection", Severity: SeverityPass}
	}
	if in.FailOnCycles {
		return Issue{Rule: "cycle-detection", Severity: SeverityFail, Message: "cycles detected and fail-on-cycles is enabled"}
	}
	return Issue{Rule: "cycle-detection", Severity: SeverityWarn, Message: "cycles detected"}
}
