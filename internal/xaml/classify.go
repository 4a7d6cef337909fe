package xaml

import (
	"regexp"
	"strings"
)

// structuralBlacklist lists local tag names (after a dotted-wrapper check)
// that are always framework plumbing, never a user-authored step.
var structuralBlacklist = map[string]bool{
	"NamespacesForImplementation":          true,
	"ReferencesForImplementation":          true,
	"Variables":                            true,
	"ViewState":                            true,
	"AssemblyReference":                    true,
	"Collection":                           true,
	"Dictionary":                           true,
	"Boolean":                              true,
	"String":                               true,
	"VirtualizedContainerService.HintSize": true,
	"WorkflowViewStateService.ViewState":   true,
}

// visualWhitelist lists container tags that are always visual regardless of
// whether they carry a DisplayName attribute.
var visualWhitelist = map[string]bool{
	"Sequence":     true,
	"If":           true,
	"TryCatch":     true,
	"Parallel":     true,
	"Pick":         true,
	"Switch":       true,
	"ForEach":      true,
	"While":        true,
	"DoWhile":      true,
	"Flowchart":    true,
	"State":        true,
	"StateMachine": true,
}

// isPropertyWrapper reports whether a local tag name is a property-wrapper
// element (e.g. "Sequence.Variables"): these are always structural.
func isPropertyWrapper(localName string) bool {
	return strings.Contains(localName, ".")
}

// classifyVisibility implements the four ordered rules from the activity
// analyzer's visibility classification.
func classifyVisibility(localName string, attrs map[string]string) bool {
	if isPropertyWrapper(localName) {
		return false
	}
	if structuralBlacklist[localName] {
		return false
	}
	if visualWhitelist[localName] {
		return true
	}
	_, hasDisplayName := attrs["DisplayName"]
	return hasDisplayName
}

var invisibleAttrPattern = regexp.MustCompile(`(?i)(ViewState|VirtualizedContainer|Annotation\.AnnotationText)`)

// isInvisibleAttribute reports whether an attribute name belongs in the
// invisible map rather than the visible properties map.
func isInvisibleAttribute(name string) bool {
	return invisibleAttrPattern.MatchString(name)
}

// expressionBracket matches the authoring-tool literal-expression convention:
// a value wrapped in square brackets, e.g. "[in_Count > 0]".
var expressionBracket = regexp.MustCompile(`^\[.*\]$`)

// expressionHeuristic matches dotted method calls, assignment, `new `, and
// String.Format-style calls — a conservative, advisory heuristic.
var expressionHeuristic = regexp.MustCompile(`\w+\.\w+\(|:=|\bnew\s+\w+|String\.Format\(`)

// IsExpression reports whether a property value looks like an expression
// rather than a literal. It is intentionally conservative: a literal string
// that coincidentally matches is tolerated.
func IsExpression(value string) bool {
	if expressionBracket.MatchString(value) {
		return true
	}
	return expressionHeuristic.MatchString(value)
}

// selectorAttributeNames lists attribute names (after namespace strip) that
// carry UI-automation selector XML.
var selectorAttributeNames = map[string]bool{
	"Selector":       true,
	"Target":         true,
	"TargetSelector": true,
	"ClippingRegion": true,
}

func isSelectorAttribute(name string) bool {
	return selectorAttributeNames[name]
}

// InvocationKindSyntactic is the part of invocation-kind classification
// decidable purely from the target path's syntax, without knowledge of the
// discovered workflow set (that resolution step belongs to the invocation
// resolver, C7).
type InvocationKindSyntactic string

const (
	InvocationSyntaxCoded   InvocationKindSyntactic = "coded"
	InvocationSyntaxDynamic InvocationKindSyntactic = "dynamic"
	InvocationSyntaxPlain   InvocationKindSyntactic = "plain"
)

var dynamicTargetPattern = regexp.MustCompile(`[\[\]{}]|\w+\.\w+\(`)

// ClassifyInvocationTarget applies the syntactic part of the three-way
// invocation classification: coded (.cs suffix), dynamic (bracket
// expression, method call, or brace substitution), or plain (a literal
// relative path, left to C7 to resolve as static or missing).
func ClassifyInvocationTarget(targetPath string) InvocationKindSyntactic {
	lower := strings.ToLower(strings.TrimSpace(targetPath))
	if strings.HasSuffix(lower, ".cs") {
		return InvocationSyntaxCoded
	}
	if dynamicTargetPattern.MatchString(targetPath) {
		return InvocationSyntaxDynamic
	}
	return InvocationSyntaxPlain
}

// invocationTypeNames lists activity type local names recognized as
// workflow-invocation activities.
var invocationTypeNames = map[string]bool{
	"InvokeWorkflowFile": true,
	"InvokeWorkflow":     true,
}

func isInvocationType(localName string) bool {
	return invocationTypeNames[localName]
}

// uiAutomationTypePattern matches activity type names in the UI-automation
// family (click, type-into, selectors, and similar desktop-automation
// activities).
var uiAutomationTypePattern = regexp.MustCompile(`(?i)(Click|TypeInto|Hover|Element|Anchor|GetText|SetText|Highlight)`)

func isUIAutomationType(localName string) bool {
	return uiAutomationTypePattern.MatchString(localName)
}
