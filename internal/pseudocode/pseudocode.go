// Package pseudocode renders an activity tree, and recursively its invoked
// workflows, as indented human-readable pseudocode text.
package pseudocode

import (
	"fmt"
	"strings"

	"github.com/rpax-dev/rpax/internal/invocation"
	"github.com/rpax-dev/rpax/internal/xaml"
)

// CyclePolicy controls how the recursive expansion handles a workflow
// already on the current call stack.
type CyclePolicy string

const (
	// CycleMark inserts a "[cycle detected]" marker line and stops descending.
	CycleMark CyclePolicy = "mark"
	// CycleStop inserts an "[expansion stopped]" marker line and stops descending.
	CycleStop CyclePolicy = "stop"
	// CycleIgnore emits nothing for the repeated workflow and stops descending.
	CycleIgnore CyclePolicy = "ignore"
)

// WorkflowSource resolves a workflow ID to its parsed activity tree and the
// resolved invocation edges originating from it.
type WorkflowSource interface {
	Tree(workflowID string) (xaml.Tree, bool)
	Edges(workflowID string) []invocation.Edge
}

// Options configures pseudocode generation.
type Options struct {
	MaxDepth int
	Cycle    CyclePolicy
}

// DefaultOptions returns the generator's default bounds.
func DefaultOptions() Options {
	return Options{MaxDepth: 50, Cycle: CycleMark}
}

const indentUnit = "  "

// Generate renders the pseudocode for rootWorkflowID, recursively expanding
// statically-resolved invocations up to opts.MaxDepth, applying opts.Cycle
// when a workflow reappears on the current expansion stack.
func Generate(src WorkflowSource, rootWorkflowID string, opts Options) string {
	var b strings.Builder
	stack := map[string]bool{}
	emit(&b, src, rootWorkflowID, 0, 0, stack, opts)
	return b.String()
}

// emit renders one workflow block. depth is the indentation level; level is
// the number of workflow expansions above this one, bounded by opts.MaxDepth.
func emit(b *strings.Builder, src WorkflowSource, workflowID string, depth, level int, stack map[string]bool, opts Options) {
	indent := strings.Repeat(indentUnit, depth)

	if stack[workflowID] {
		// A workflow already on the current expansion stack is never
		// re-expanded, regardless of policy; only the emitted text differs.
		switch opts.Cycle {
		case CycleStop:
			fmt.Fprintf(b, "%s# [expansion stopped: %s]\n", indent, workflowID)
		case CycleIgnore:
			// emit nothing, do not recurse
		default:
			fmt.Fprintf(b, "%s# [cycle detected: %s]\n", indent, workflowID)
		}
		return
	}

	if level >= opts.MaxDepth {
		fmt.Fprintf(b, "%s# [max depth reached]\n", indent)
		return
	}

	tree, ok := src.Tree(workflowID)
	if !ok {
		fmt.Fprintf(b, "%s# [workflow not found: %s]\n", indent, workflowID)
		return
	}

	fmt.Fprintf(b, "%sWORKFLOW %s\n", indent, workflowID)

	stack[workflowID] = true
	defer delete(stack, workflowID)

	edgesByNode := map[string]invocation.Edge{}
	for _, e := range src.Edges(workflowID) {
		edgesByNode[e.SourceNodeID] = e
	}

	if tree.RootID != "" {
		emitNode(b, src, tree, tree.RootID, depth+1, level, stack, opts, edgesByNode)
	}
}

func emitNode(b *strings.Builder, src WorkflowSource, tree xaml.Tree, nodeID string, depth, level int, stack map[string]bool, opts Options, edgesByNode map[string]invocation.Edge) {
	node := findNode(tree, nodeID)
	if node == nil {
		return
	}
	indent := strings.Repeat(indentUnit, depth)

	label := node.Type
	if node.DisplayName != "" {
		label = fmt.Sprintf("%s (%s)", node.Type, node.DisplayName)
	}
	branch := ""
	if node.ContainerBranch != "" {
		branch = fmt.Sprintf(" [%s]", node.ContainerBranch)
	}
	fmt.Fprintf(b, "%s%s%s\n", indent, label, branch)

	if edge, ok := edgesByNode[nodeID]; ok {
		switch edge.Kind {
		case invocation.KindStatic:
			emit(b, src, edge.TargetWorkflowID, depth+1, level+1, stack, opts)
		case invocation.KindDynamic:
			fmt.Fprintf(b, "%s  # [dynamic invocation: %s]\n", indent, edge.RawTarget)
		case invocation.KindMissing:
			fmt.Fprintf(b, "%s  # [missing invocation target: %s]\n", indent, edge.RawTarget)
		case invocation.KindCoded:
			fmt.Fprintf(b, "%s  # [coded workflow: %s]\n", indent, edge.RawTarget)
		}
	}

	for _, childID := range node.ChildIDs {
		emitNode(b, src, tree, childID, depth+1, level, stack, opts, edgesByNode)
	}
}

func findNode(tree xaml.Tree, id string) *xaml.Node {
	for i := range tree.Nodes {
		if tree.Nodes[i].ID == id {
			return &tree.Nodes[i]
		}
	}
	return nil
}
