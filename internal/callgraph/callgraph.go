// Package callgraph builds the project-wide workflow call graph from
// resolved invocation edges: depth assignment by breadth-first traversal
// from entry points, and three-color cycle detection.
package callgraph

import (
	"sort"
	"strings"

	"github.com/rpax-dev/rpax/internal/invocation"
)

// CycleKind classifies a detected cycle by its shape.
type CycleKind string

const (
	CycleSelf    CycleKind = "self"
	CycleMutual  CycleKind = "mutual"
	CycleComplex CycleKind = "complex"
)

// Cycle is one detected cycle, the ordered list of workflow IDs on it.
type Cycle struct {
	Kind      CycleKind
	Workflows []string
}

// Graph is the resolved call graph over a project's workflow set.
type Graph struct {
	Nodes       []string            // all workflow IDs, entry points and invoked alike
	Edges       []invocation.Edge   // every resolved edge; only static ones are traversed
	Depth       map[string]int      // workflow ID -> BFS depth from nearest entry point, -1 if unreached
	Cycles      []Cycle
	EntryPoints []string
}

// Build constructs the call graph. allWorkflowIDs is every discovered
// workflow; entryPoints are the project's declared (or inferred) entry
// point workflow IDs; edges are every resolved invocation, including
// non-static ones (kept for completeness but not traversed for depth or
// cycle purposes).
func Build(allWorkflowIDs, entryPoints []string, edges []invocation.Edge) Graph {
	g := Graph{
		Nodes:       append([]string(nil), allWorkflowIDs...),
		Edges:       edges,
		Depth:       map[string]int{},
		EntryPoints: append([]string(nil), entryPoints...),
	}

	adjacency := map[string][]string{}
	for _, e := range edges {
		if e.Kind != invocation.KindStatic || e.TargetWorkflowID == "" {
			continue
		}
		adjacency[e.SourceWorkflowID] = append(adjacency[e.SourceWorkflowID], e.TargetWorkflowID)
	}
	for src := range adjacency {
		sort.Strings(adjacency[src])
	}

	for _, id := range g.Nodes {
		g.Depth[id] = -1
	}
	bfsAssignDepth(g.Depth, adjacency, entryPoints)

	g.Cycles = detectCycles(g.Nodes, adjacency)
	return g
}

func bfsAssignDepth(depth map[string]int, adjacency map[string][]string, entryPoints []string) {
	queue := make([]string, 0, len(entryPoints))
	for _, ep := range entryPoints {
		if _, ok := depth[ep]; !ok {
			continue
		}
		if depth[ep] == -1 {
			depth[ep] = 0
			queue = append(queue, ep)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if depth[next] == -1 {
				depth[next] = depth[current] + 1
				queue = append(queue, next)
			}
		}
	}
}

// color marks a node's state during the three-color DFS cycle search.
type color int

const (
	white color = iota
	gray
	black
)

// detectCycles runs a three-color DFS over the static-invocation adjacency,
// classifying each back-edge cycle found as self (A->A), mutual (A->B->A),
// or complex (anything longer).
func detectCycles(nodes []string, adjacency map[string][]string) []Cycle {
	colors := map[string]color{}
	for _, n := range nodes {
		colors[n] = white
	}

	var cycles []Cycle
	seen := map[string]bool{}
	var stack []string

	var visit func(node string)
	visit = func(node string) {
		colors[node] = gray
		stack = append(stack, node)

		for _, next := range adjacency[node] {
			switch colors[next] {
			case white:
				visit(next)
			case gray:
				if cycle, key := buildCycle(stack, next); !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case black:
				// already fully explored, no cycle through it
			}
		}

		stack = stack[:len(stack)-1]
		colors[node] = black
	}

	sortedNodes := append([]string(nil), nodes...)
	sort.Strings(sortedNodes)
	for _, n := range sortedNodes {
		if colors[n] == white {
			visit(n)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i].Workflows, "\x00") < strings.Join(cycles[j].Workflows, "\x00")
	})
	return cycles
}

// buildCycle extracts the cycle from the DFS stack starting at closingNode,
// then canonicalizes it by rotating the vertex sequence so its
// lexicographically smallest member is first. The canonical sequence (joined
// by a NUL separator, which cannot appear in a workflow ID) is returned as a
// dedup key, so the same cycle reached from different traversal entry points
// is only recorded once.
func buildCycle(stack []string, closingNode string) (Cycle, string) {
	start := 0
	for i, n := range stack {
		if n == closingNode {
			start = i
			break
		}
	}
	loop := append([]string(nil), stack[start:]...)
	loop = canonicalRotation(loop)

	kind := CycleComplex
	switch len(loop) {
	case 1:
		kind = CycleSelf
	case 2:
		kind = CycleMutual
	}
	return Cycle{Kind: kind, Workflows: loop}, strings.Join(loop, "\x00")
}

// canonicalRotation rotates a cycle's vertex sequence so that its
// lexicographically smallest vertex is first, without reversing the
// sequence's direction.
func canonicalRotation(loop []string) []string {
	if len(loop) <= 1 {
		return loop
	}
	minIdx := 0
	for i, v := range loop {
		if v < loop[minIdx] {
			minIdx = i
		}
	}
	if minIdx == 0 {
		return loop
	}
	rotated := make([]string, len(loop))
	copy(rotated, loop[minIdx:])
	copy(rotated[len(loop)-minIdx:], loop[:minIdx])
	return rotated
}
