package console

import (
	"strings"
	"testing"
)

func TestFormatValidationSummary_AllPass(t *testing.T) {
	results := &ValidationResults{}

	output := FormatValidationSummary(results, false)
	if !strings.Contains(output, "All validation rules passed") {
		t.Errorf("expected pass message for no issues, got: %s", output)
	}
}

func TestFormatValidationSummary_SingleFailure(t *testing.T) {
	results := &ValidationResults{
		Failures: []ValidationIssue{
			{
				Rule:     "referential-integrity",
				Severity: "fail",
				Message:  "invocation target not found in workflow index",
				Artifact: "acme-bot#Framework/Init#a1b2c3d4",
			},
		},
	}

	output := FormatValidationSummary(results, false)

	if !strings.Contains(output, "Validation failed with 1 failing rule(s)") {
		t.Errorf("expected failure count in output, got: %s", output)
	}
	if !strings.Contains(output, "By Rule:") {
		t.Errorf("expected rule section, got: %s", output)
	}
	if !strings.Contains(output, "referential-integrity: 1 issue(s)") {
		t.Errorf("expected rule grouping, got: %s", output)
	}
	if !strings.Contains(output, "Use --verbose") {
		t.Errorf("expected verbose hint, got: %s", output)
	}
}

func TestFormatValidationSummary_WarningsOnly(t *testing.T) {
	results := &ValidationResults{
		Warnings: []ValidationIssue{
			{Rule: "cycle-detection", Severity: "warn", Message: "cycle detected: A -> B -> A"},
		},
	}

	output := FormatValidationSummary(results, false)
	if !strings.Contains(output, "Validation passed with 1 warning(s)") {
		t.Errorf("expected warning-only summary, got: %s", output)
	}
}

func TestFormatValidationSummary_VerboseMode(t *testing.T) {
	results := &ValidationResults{
		Failures: []ValidationIssue{
			{
				Rule:     "roots-resolvable",
				Severity: "fail",
				Message:  "default entry point workflow not found",
				Artifact: "acme-bot#Main",
				JSONPath: "$.entryPoints[0]",
			},
		},
	}

	output := FormatValidationSummary(results, true)

	if !strings.Contains(output, "Detailed Issues:") {
		t.Errorf("expected detailed issues section in verbose mode, got: %s", output)
	}
	if !strings.Contains(output, "default entry point workflow not found") {
		t.Errorf("expected issue message in verbose mode, got: %s", output)
	}
	if !strings.Contains(output, "Artifact: acme-bot#Main $.entryPoints[0]") {
		t.Errorf("expected artifact reference in verbose mode, got: %s", output)
	}
	if strings.Contains(output, "Use --verbose") {
		t.Errorf("should not repeat verbose hint when already verbose, got: %s", output)
	}
}

func TestGroupIssuesByRule(t *testing.T) {
	issues := []ValidationIssue{
		{Rule: "kinds-bounded", Message: "issue 1"},
		{Rule: "provenance", Message: "issue 2"},
		{Rule: "kinds-bounded", Message: "issue 3"},
		{Rule: "", Message: "issue 4"},
	}

	groups := groupIssuesByRule(issues)

	if len(groups["kinds-bounded"]) != 2 {
		t.Errorf("expected 2 kinds-bounded issues, got %d", len(groups["kinds-bounded"]))
	}
	if len(groups["provenance"]) != 1 {
		t.Errorf("expected 1 provenance issue, got %d", len(groups["provenance"]))
	}
	if len(groups["unknown"]) != 1 {
		t.Errorf("expected empty rule to fall back to \"unknown\", got %d", len(groups["unknown"]))
	}
}

func TestFormatValidationSummary_MultipleRules(t *testing.T) {
	results := &ValidationResults{
		Failures: []ValidationIssue{
			{Rule: "artifacts-presence", Severity: "fail", Message: "manifest.json missing"},
			{Rule: "referential-integrity", Severity: "fail", Message: "target not found"},
		},
		Warnings: []ValidationIssue{
			{Rule: "cycle-detection", Severity: "warn", Message: "cycle found, not configured to fail"},
		},
	}

	output := FormatValidationSummary(results, true)
	if output == "" {
		t.Fatal("expected non-empty output")
	}
	if !strings.Contains(output, "artifacts-presence: 1 issue(s)") {
		t.Errorf("expected artifacts-presence grouping, got: %s", output)
	}
	if !strings.Contains(output, "cycle-detection: 1 issue(s)") {
		t.Errorf("expected cycle-detection grouping, got: %s", output)
	}
}
