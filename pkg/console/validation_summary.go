package console

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationIssue is a single issue raised by one validation rule against the
// emitted artifact lake.
type ValidationIssue struct {
	Rule     string // "artifacts-presence", "referential-integrity", "cycle-detection", etc.
	Severity string // "fail", "warn", "pass"
	Message  string
	Artifact string // artifact reference, e.g. a project slug or workflow ID
	JSONPath string
}

// ValidationResults holds the issues produced by a validate run, grouped by
// severity ahead of summary rendering.
type ValidationResults struct {
	Failures []ValidationIssue
	Warnings []ValidationIssue
}

var severityOrder = map[string]int{
	"fail": 1,
	"warn": 2,
}

var ruleEmoji = map[string]string{
	"artifacts-presence":     "📦",
	"provenance":             "🏷️",
	"roots-resolvable":       "🎯",
	"referential-integrity":  "🔗",
	"kinds-bounded":          "🔎",
	"arguments-presence":     "📋",
	"cycle-detection":        "🔁",
}

// FormatValidationSummary formats validation results into the text shown by
// `rpax validate`. With verbose set, every issue is listed individually;
// otherwise only per-rule counts are shown.
func FormatValidationSummary(results *ValidationResults, verbose bool) string {
	if len(results.Failures) == 0 && len(results.Warnings) == 0 {
		return FormatSuccessMessage("All validation rules passed")
	}

	var output strings.Builder

	if len(results.Failures) > 0 {
		output.WriteString(FormatErrorMessage(fmt.Sprintf("Validation failed with %d failing rule(s)", len(results.Failures))))
		output.WriteString("\n\n")
	} else {
		output.WriteString(FormatWarningMessage(fmt.Sprintf("Validation passed with %d warning(s)", len(results.Warnings))))
		output.WriteString("\n\n")
	}

	allIssues := append(append([]ValidationIssue{}, results.Failures...), results.Warnings...)

	ruleGroups := groupIssuesByRule(allIssues)
	if len(ruleGroups) > 0 {
		output.WriteString(FormatListHeader("By Rule:"))
		output.WriteString("\n")

		rules := make([]string, 0, len(ruleGroups))
		for rule := range ruleGroups {
			rules = append(rules, rule)
		}
		sort.Strings(rules)

		for _, rule := range rules {
			issues := ruleGroups[rule]
			emoji := ruleEmoji[rule]
			if emoji == "" {
				emoji = "⚠️"
			}
			output.WriteString(fmt.Sprintf("  %s %s: %d issue(s)\n", emoji, rule, len(issues)))
		}
		output.WriteString("\n")
	}

	if verbose {
		output.WriteString(FormatListHeader("Detailed Issues:"))
		output.WriteString("\n\n")

		sorted := make([]ValidationIssue, len(allIssues))
		copy(sorted, allIssues)
		sort.Slice(sorted, func(i, j int) bool {
			si, sj := severityOrder[sorted[i].Severity], severityOrder[sorted[j].Severity]
			if si != sj {
				return si < sj
			}
			return sorted[i].Rule < sorted[j].Rule
		})

		for i, issue := range sorted {
			emoji := ruleEmoji[issue.Rule]
			if emoji == "" {
				emoji = "⚠️"
			}
			output.WriteString(fmt.Sprintf("%d. %s [%s] %s\n", i+1, emoji, strings.ToUpper(issue.Severity), issue.Rule))
			output.WriteString(fmt.Sprintf("   %s\n", issue.Message))
			if issue.Artifact != "" {
				location := issue.Artifact
				if issue.JSONPath != "" {
					location = fmt.Sprintf("%s %s", location, issue.JSONPath)
				}
				output.WriteString(fmt.Sprintf("   Artifact: %s\n", location))
			}
			output.WriteString("\n")
		}
	} else {
		output.WriteString(FormatInfoMessage("Use --verbose to see detailed issues"))
		output.WriteString("\n")
	}

	return output.String()
}

func groupIssuesByRule(issues []ValidationIssue) map[string][]ValidationIssue {
	groups := make(map[string][]ValidationIssue)
	for _, issue := range issues {
		rule := issue.Rule
		if rule == "" {
			rule = "unknown"
		}
		groups[rule] = append(groups[rule], issue)
	}
	return groups
}
