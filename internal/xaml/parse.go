// Package xaml implements the activity-tree extractor: a hardened XML
// reader over a workflow's raw content, followed by a top-down traversal
// that classifies elements as visual or structural, assigns stable node
// IDs, and extracts properties, expressions, selectors, and invocation
// targets.
//
// An element that is not a property wrapper, not blacklisted, and not a
// whitelisted container is treated as visual only when it carries a
// DisplayName attribute; without one it is structural. No other heuristic is
// applied.
package xaml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rpax-dev/rpax/internal/identity"
	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("xaml")

// rawAttr is one attribute with its namespace-resolved local name.
type rawAttr struct {
	Local string
	Space string
	Value string
}

// rawElement is the intermediate parse tree, before visibility
// classification collapses structural wrappers.
type rawElement struct {
	Local    string
	Space    string
	Attrs    []rawAttr
	Children []*rawElement
	Text     string
}

// ParseError wraps a parse failure with enough context for a per-workflow
// diagnostic entry; the caller decides whether to abort or continue.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// Parse parses raw XAML content and returns the extracted activity tree.
// A malformed document yields a non-nil error; the caller records
// `parse-successful = false` and an empty tree on the owning workflow
// record rather than aborting the run.
func Parse(content []byte) (Tree, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	// External entities are never resolved: the default decoder has no DTD
	// fetch capability, so this is inherent rather than configured.
	decoder.Entity = map[string]string{}

	root, namespaces, err := parseTree(decoder)
	if err != nil {
		return Tree{}, &ParseError{Message: fmt.Sprintf("xaml parse failed: %v", err)}
	}
	if root == nil {
		return Tree{}, &ParseError{Message: "xaml document has no root element"}
	}

	w := &walker{}
	w.walkStructural(root, "", 0, "")

	packages := derivePackages(namespaces)

	return Tree{
		Nodes:      w.nodes,
		RootID:     w.rootID,
		Namespaces: namespaces,
		Packages:   packages,
	}, nil
}

func parseTree(decoder *xml.Decoder) (*rawElement, []string, error) {
	var root *rawElement
	var namespaces []string
	stack := []*rawElement{}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &rawElement{Local: t.Name.Local, Space: t.Name.Space}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					if len(stack) == 0 {
						namespaces = append(namespaces, a.Value)
					}
					continue
				}
				el.Attrs = append(el.Attrs, rawAttr{Local: a.Name.Local, Space: a.Name.Space, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	return root, dedupStrings(namespaces), nil
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// walker accumulates emitted nodes during the top-down traversal.
type walker struct {
	nodes   []Node
	rootID  string
	siblingCounters map[string]map[string]int // visual-parent-id -> type -> count
}

// walkStructural recurses through elements, skipping structural wrappers but
// tracking the property-wrapper path traversed since the last visual
// ancestor (for container-branch attribution), and emits a Node for every
// visual element reached.
func (w *walker) walkStructural(el *rawElement, visualParentID string, depth int, wrapperPath string) {
	attrs := attrMap(el)
	visible := classifyVisibility(el.Local, attrs)

	if !visible {
		nextWrapper := wrapperPath
		if isPropertyWrapper(el.Local) {
			branch := branchFromWrapper(el.Local)
			if branch != "" {
				nextWrapper = branch
			}
		}
		for _, child := range el.Children {
			w.walkStructural(child, visualParentID, depth, nextWrapper)
		}
		return
	}

	id := w.nextNodeID(visualParentID, el.Local)
	if visualParentID == "" {
		w.rootID = id
	}

	node := Node{
		ID:              id,
		Type:            el.Local,
		ParentID:        visualParentID,
		Depth:           depth,
		ContainerBranch: wrapperPath,
		Properties:      map[string]string{},
		IsExpression:    map[string]bool{},
		Invisible:       map[string]string{},
		Selectors:       map[string]string{},
		XPath:           xpathFor(el.Local, depth),
	}

	extractProperties(el, &node)
	node.ContentHash = identity.ActivityContentHash(el.Local, attrs, childContentHashes(el))

	if isInvocationType(el.Local) {
		if target, ok := attrs["WorkflowFileName"]; ok {
			node.InvocationPath = target
		}
	}

	w.nodes = append(w.nodes, node)
	if visualParentID != "" {
		w.attachChild(visualParentID, id)
	}

	for _, child := range el.Children {
		w.walkStructural(child, id, depth+1, "")
	}
}

func (w *walker) attachChild(parentID, childID string) {
	for i := range w.nodes {
		if w.nodes[i].ID == parentID {
			w.nodes[i].ChildIDs = append(w.nodes[i].ChildIDs, childID)
			return
		}
	}
}

// nextNodeID assigns the 0-based sibling index among visual siblings of the
// same type under the same visual parent, omitting the index for the first
// occurrence.
func (w *walker) nextNodeID(visualParentID, typeName string) string {
	if w.siblingCounters == nil {
		w.siblingCounters = map[string]map[string]int{}
	}
	byType, ok := w.siblingCounters[visualParentID]
	if !ok {
		byType = map[string]int{}
		w.siblingCounters[visualParentID] = byType
	}
	index := byType[typeName]
	byType[typeName] = index + 1

	segment := typeName
	if index > 0 {
		segment = fmt.Sprintf("%s[%d]", typeName, index)
	}
	if visualParentID == "" {
		return segment
	}
	return visualParentID + "/" + segment
}

func branchFromWrapper(wrapperLocal string) string {
	parts := strings.SplitN(wrapperLocal, ".", 2)
	if len(parts) != 2 {
		return ""
	}
	return wrapperBranchNames[parts[1]]
}

func attrMap(el *rawElement) map[string]string {
	m := make(map[string]string, len(el.Attrs))
	for _, a := range el.Attrs {
		m[a.Local] = a.Value
	}
	return m
}

func childContentHashes(el *rawElement) []string {
	var hashes []string
	for _, child := range el.Children {
		attrs := attrMap(child)
		if classifyVisibility(child.Local, attrs) {
			hashes = append(hashes, identity.ActivityContentHash(child.Local, attrs, childContentHashes(child)))
		} else {
			hashes = append(hashes, childContentHashes(child)...)
		}
	}
	return hashes
}

func xpathFor(localName string, depth int) string {
	return fmt.Sprintf("/%s[depth=%d]", localName, depth)
}

func extractProperties(el *rawElement, node *Node) {
	for _, a := range el.Attrs {
		switch {
		case a.Local == "DisplayName":
			node.DisplayName = a.Value
		case a.Local == "Annotation.AnnotationText":
			node.Annotation = a.Value
		case isInvisibleAttribute(a.Local):
			node.Invisible[a.Local] = a.Value
		default:
			node.Properties[a.Local] = a.Value
			if IsExpression(a.Value) {
				node.IsExpression[a.Local] = true
			}
		}
		if isUIAutomationType(el.Local) && isSelectorAttribute(a.Local) {
			node.Selectors[a.Local] = a.Value
		}
	}

	for _, child := range el.Children {
		if !isPropertyWrapper(child.Local) {
			continue
		}
		key := child.Local
		value := wrapperValue(child)
		node.Properties[key] = value
	}
}

// wrapperValue collapses a property-wrapper child into a single value:
// its text content when simple, or the <complex-structure> marker when the
// wrapper holds multi-level XML the analyzer declines to flatten.
func wrapperValue(el *rawElement) string {
	if len(el.Children) == 0 {
		return strings.TrimSpace(el.Text)
	}
	for _, child := range el.Children {
		if len(child.Children) > 0 {
			return "<complex-structure>"
		}
	}
	if len(el.Children) == 1 {
		return strings.TrimSpace(el.Children[0].Text)
	}
	return "<complex-structure>"
}

// authoringURIPackages maps known authoring-tool namespace URIs to
// canonical package names.
var authoringURIPackages = map[string]string{
	"http://schemas.uipath.com/workflow/activities":      "UiPath.Core.Activities",
	"http://schemas.uipath.com/workflow/activities/ui":    "UiPath.UIAutomationNext.Activities",
	"http://schemas.microsoft.com/netfx/2009/xaml/activities": "System.Activities",
}

// derivePackages matches root namespace declarations against the fixed
// table of authoring-tool URIs, extracts assembly names from clr-namespace
// URIs, and ignores everything else.
func derivePackages(namespaces []string) []string {
	seen := map[string]bool{}
	var packages []string
	for _, ns := range namespaces {
		if pkg, ok := authoringURIPackages[ns]; ok {
			if !seen[pkg] {
				seen[pkg] = true
				packages = append(packages, pkg)
			}
			continue
		}
		if strings.HasPrefix(ns, "clr-namespace:") {
			if assembly, ok := assemblyFromCLRNamespace(ns); ok && !seen[assembly] {
				seen[assembly] = true
				packages = append(packages, assembly)
			}
		}
	}
	sort.Strings(packages)
	return packages
}

func assemblyFromCLRNamespace(ns string) (string, bool) {
	const marker = "assembly="
	idx := strings.Index(ns, marker)
	if idx < 0 {
		return "", false
	}
	rest := ns[idx+len(marker):]
	if semi := strings.Index(rest, ";"); semi >= 0 {
		rest = rest[:semi]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}
