// Package invocation resolves the raw invocation targets extracted by the
// activity analyzer against the discovered workflow set, classifying each
// as static, dynamic, missing, or coded, and breaking basename ties with a
// shortest-path-then-lexicographic rule.
package invocation

import (
	"sort"
	"strings"

	"github.com/rpax-dev/rpax/internal/paths"
	"github.com/rpax-dev/rpax/internal/xaml"
	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("invocation")

// Kind is the resolved, semantic classification of an invocation edge.
type Kind string

const (
	KindStatic  Kind = "static"
	KindDynamic Kind = "dynamic"
	KindMissing Kind = "missing"
	KindCoded   Kind = "coded"
)

// Edge is one resolved call-site: a source activity node invoking a target
// workflow (or failing to resolve one).
type Edge struct {
	SourceWorkflowID string
	SourceNodeID     string
	RawTarget        string
	Kind             Kind
	TargetWorkflowID string // "" unless Kind == KindStatic
	TieBroken        bool   // true if basename ambiguity required a tie-break
}

// Resolver resolves invocation targets against a fixed set of known
// workflow IDs (normalized, slash-separated, extension-stripped).
type Resolver struct {
	workflowIDs []string
	byBasename  map[string][]string
}

// NewResolver indexes the discovered workflow ID set for basename lookup.
func NewResolver(workflowIDs []string) *Resolver {
	r := &Resolver{
		workflowIDs: append([]string(nil), workflowIDs...),
		byBasename:  map[string][]string{},
	}
	for _, id := range workflowIDs {
		base := basename(id)
		r.byBasename[base] = append(r.byBasename[base], id)
	}
	for base := range r.byBasename {
		sort.Strings(r.byBasename[base])
	}
	return r
}

// Resolve classifies one raw invocation target and, for a statically
// resolvable target, returns the matching workflow ID.
func (r *Resolver) Resolve(sourceWorkflowID, sourceNodeID, rawTarget string) Edge {
	edge := Edge{SourceWorkflowID: sourceWorkflowID, SourceNodeID: sourceNodeID, RawTarget: rawTarget}

	switch xaml.ClassifyInvocationTarget(rawTarget) {
	case xaml.InvocationSyntaxCoded:
		edge.Kind = KindCoded
		return edge
	case xaml.InvocationSyntaxDynamic:
		edge.Kind = KindDynamic
		return edge
	}

	normalized := paths.NormalizeWorkflowID(rawTarget)

	if id, ok := r.exactMatch(normalized); ok {
		edge.Kind = KindStatic
		edge.TargetWorkflowID = id
		return edge
	}

	base := basename(normalized)
	candidates := r.byBasename[base]
	if len(candidates) == 0 {
		edge.Kind = KindMissing
		log.Printf("invocation target not found: %s -> %s", sourceWorkflowID, rawTarget)
		return edge
	}

	edge.Kind = KindStatic
	edge.TargetWorkflowID = tieBreak(candidates)
	edge.TieBroken = len(candidates) > 1
	if edge.TieBroken {
		log.Printf("basename-ambiguous invocation target %q resolved to %s among %d candidates", rawTarget, edge.TargetWorkflowID, len(candidates))
	}
	return edge
}

func (r *Resolver) exactMatch(normalized string) (string, bool) {
	for _, id := range r.workflowIDs {
		if strings.EqualFold(id, normalized) {
			return id, true
		}
	}
	return "", false
}

func basename(workflowID string) string {
	idx := strings.LastIndex(workflowID, "/")
	if idx < 0 {
		return strings.ToLower(workflowID)
	}
	return strings.ToLower(workflowID[idx+1:])
}

// tieBreak picks among multiple same-basename candidates: shortest path
// first, lexicographic order breaking any remaining tie.
func tieBreak(candidates []string) string {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) || (len(c) == len(best) && c < best) {
			best = c
		}
	}
	return best
}
