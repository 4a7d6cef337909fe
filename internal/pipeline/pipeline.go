// Package pipeline orchestrates a full analysis run over one project tree:
// descriptor parsing, workflow discovery, per-workflow XAML extraction,
// invocation resolution, call-graph construction, package classification,
// validation, and artifact writing. Pseudocode is not generated or written
// to the lake by a pipeline run; it is rendered on demand by the
// `pseudocode` command.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rpax-dev/rpax/internal/callgraph"
	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/internal/diagnostics"
	"github.com/rpax-dev/rpax/internal/discovery"
	"github.com/rpax-dev/rpax/internal/identity"
	"github.com/rpax-dev/rpax/internal/invocation"
	"github.com/rpax-dev/rpax/internal/lake"
	"github.com/rpax-dev/rpax/internal/packages"
	"github.com/rpax-dev/rpax/internal/paths"
	"github.com/rpax-dev/rpax/internal/project"
	"github.com/rpax-dev/rpax/internal/validate"
	"github.com/rpax-dev/rpax/internal/xaml"
	"github.com/rpax-dev/rpax/pkg/logger"
	"github.com/sourcegraph/conc/pool"
)

var log = logger.Component("pipeline")

// GeneratorVersion stamps every manifest written by this build.
const GeneratorVersion = "0.1.0"

// SchemaVersion stamps the lake's artifact schema version.
const SchemaVersion = "1"

// Manifest is the per-project summary document.
type Manifest struct {
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Root             string            `json:"root"`
	Kind             string            `json:"kind"`
	GeneratorVersion string            `json:"generatorVersion"`
	SchemaVersion    string            `json:"schemaVersion"`
	GeneratedAt      string            `json:"generatedAt"`
	WorkflowCount    int               `json:"workflowCount"`
	EntryPoints      []string          `json:"entryPoints"`
	ParseErrors      []string          `json:"parseErrors,omitempty"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
}

// WorkflowRecord is one entry in the workflow index.
type WorkflowRecord struct {
	ID           string `json:"id"`
	RelativePath string `json:"relativePath"`
	Kind         string `json:"kind"`
	ParseOK      bool   `json:"parseOk"`
	NodeCount    int    `json:"nodeCount"`
	ContentHash  string `json:"contentHash,omitempty"`
}

// Result is everything the pipeline produced, in memory, for a run —
// callers that need the lake on disk use Run, which also writes artifacts.
type Result struct {
	Project      project.Project
	Manifest     Manifest
	Workflows    []WorkflowRecord
	Trees        map[string]xaml.Tree
	PackageUsage []packages.Usage
	Edges        []invocation.Edge
	Graph        callgraph.Graph
	Validation   validate.Result
	Diagnostics  *diagnostics.Collector
}

// treeSource adapts a Result's parsed trees and edges to the pseudocode
// generator's WorkflowSource interface.
type treeSource struct {
	trees map[string]xaml.Tree
	edges map[string][]invocation.Edge
}

func (s treeSource) Tree(workflowID string) (xaml.Tree, bool) {
	t, ok := s.trees[workflowID]
	return t, ok
}

func (s treeSource) Edges(workflowID string) []invocation.Edge {
	return s.edges[workflowID]
}

// Run executes the full pipeline over projectRoot and writes the resulting
// artifacts into lakeRoot, using cfg to drive discovery, parsing, and
// validation behavior. It never returns early on a per-workflow parse
// failure; those are recorded on the workflow record and in diagnostics.
func Run(projectRoot, lakeRoot string, cfg config.Config, collector *diagnostics.Collector) (Result, error) {
	proj, err := project.Parse(projectRoot)
	if err != nil {
		collector.Critical(err.Error(), diagnostics.Context{Operation: "parse-project", Component: "project", ProjectRoot: projectRoot})
		return Result{}, fmt.Errorf("parse project descriptor: %w", err)
	}

	discoveryOpts := discovery.Options{
		IncludeCodedWorkflows: cfg.Parser.IncludeCodedWorkflows,
		ExcludeGlobs:          cfg.Scan.Exclude,
	}
	discovered, err := discovery.Discover(projectRoot, discoveryOpts)
	if err != nil {
		collector.Critical(err.Error(), diagnostics.Context{Operation: "discover-workflows", Component: "discovery", ProjectSlug: proj.Slug})
		return Result{}, fmt.Errorf("discover workflows: %w", err)
	}

	trees := map[string]xaml.Tree{}
	perWorkflowPackages := map[string][]string{}
	var records []WorkflowRecord
	var parseErrors []string

	// C4 (parse + extract) is data-parallel over workflows, bounded by a
	// fixed worker pool, the same controlled-concurrency pattern the
	// teacher uses for its own per-item fan-out.
	outcomes := parseWorkflowsConcurrently(discovered.Candidates, maxParseWorkers)

	for _, outcome := range outcomes {
		record := outcome.record
		if outcome.readErr != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", record.RelativePath, outcome.readErr))
			collector.Error(outcome.readErr, diagnostics.Context{Operation: "read-workflow", Component: "xaml", ProjectSlug: proj.Slug, WorkflowID: record.ID})
			records = append(records, record)
			continue
		}
		if outcome.parseErr != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", record.RelativePath, outcome.parseErr))
			collector.Warning(outcome.parseErr.Error(), diagnostics.Context{Operation: "parse-workflow", Component: "xaml", ProjectSlug: proj.Slug, WorkflowID: record.ID})
			records = append(records, record)
			continue
		}
		if record.Kind == "xaml" {
			trees[record.ID] = outcome.tree
			perWorkflowPackages[record.ID] = outcome.tree.Packages
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	workflowIDs := make([]string, 0, len(trees))
	for id := range trees {
		workflowIDs = append(workflowIDs, id)
	}
	sort.Strings(workflowIDs)

	resolver := invocation.NewResolver(workflowIDs)
	edgesByWorkflow := map[string][]invocation.Edge{}
	var allEdges []invocation.Edge

	for _, id := range workflowIDs {
		tree := trees[id]
		for _, node := range tree.Nodes {
			if node.InvocationPath == "" {
				continue
			}
			edge := resolver.Resolve(id, node.ID, node.InvocationPath)
			edgesByWorkflow[id] = append(edgesByWorkflow[id], edge)
			allEdges = append(allEdges, edge)

			switch {
			case edge.Kind == invocation.KindMissing:
				collector.Warning(
					fmt.Sprintf("invocation target not found: %s", edge.RawTarget),
					diagnostics.Context{Operation: "resolve-invocation", Component: "invocation", ProjectSlug: proj.Slug, WorkflowID: id},
				)
			case edge.TieBroken:
				collector.Warning(
					fmt.Sprintf("basename-ambiguous invocation target %q resolved to %s", edge.RawTarget, edge.TargetWorkflowID),
					diagnostics.Context{Operation: "resolve-invocation", Component: "invocation", ProjectSlug: proj.Slug, WorkflowID: id},
				)
			}
		}
	}
	sort.Slice(allEdges, func(i, j int) bool {
		if allEdges[i].SourceWorkflowID != allEdges[j].SourceWorkflowID {
			return allEdges[i].SourceWorkflowID < allEdges[j].SourceWorkflowID
		}
		return allEdges[i].SourceNodeID < allEdges[j].SourceNodeID
	})

	entryPointIDs := make([]string, 0, len(proj.EntryPoints))
	for _, ep := range proj.EntryPoints {
		entryPointIDs = append(entryPointIDs, paths.NormalizeWorkflowID(ep.FilePath))
	}

	graph := callgraph.Build(workflowIDs, entryPointIDs, allEdges)

	cache, cacheErr := packages.LoadCache(filepath.Join(lakeRoot, "packages.cache.json"))
	if cacheErr != nil {
		collector.Warning(cacheErr.Error(), diagnostics.Context{Operation: "load-package-cache", Component: "packages", ProjectSlug: proj.Slug})
		cache = packages.Cache{Decisions: map[string]packages.Classification{}}
	}
	pkgUsage := packages.Analyze(proj.Dependencies, perWorkflowPackages, cache, []string{filepath.Dir(projectRoot)})

	manifest := Manifest{
		Name:             proj.Name,
		Slug:             proj.Slug,
		Root:             projectRoot,
		Kind:             string(proj.Kind),
		GeneratorVersion: GeneratorVersion,
		SchemaVersion:    SchemaVersion,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		WorkflowCount:    len(records),
		EntryPoints:      entryPointIDs,
		ParseErrors:      parseErrors,
		Dependencies:     proj.Dependencies,
	}

	workflowArgs := map[string]bool{}
	for _, ep := range proj.EntryPoints {
		id := paths.NormalizeWorkflowID(ep.FilePath)
		workflowArgs[id] = len(ep.Input) > 0 || len(ep.Output) > 0
	}

	validationResult := validate.Run(validate.Input{
		ManifestPresent:     true,
		WorkflowIndexBytes:  []byte("non-empty"),
		InvocationsBytes:    []byte("non-empty"),
		Manifest:            validate.Manifest{GeneratorVersion: manifest.GeneratorVersion, SchemaVersion: manifest.SchemaVersion, GeneratedAt: manifest.GeneratedAt},
		EntryPointPaths:     entryPointIDs,
		DefaultEntryPoint:   paths.NormalizeWorkflowID(proj.Main),
		DiscoveredWorkflows: workflowIDs,
		WorkflowArguments:   workflowArgs,
		ParseErrors:         parseErrors,
		Edges:               allEdges,
		Cycles:              graph.Cycles,
		FailOnCycles:        cfg.Validation.FailOnCycles,
	})

	result := Result{
		Project:      proj,
		Manifest:     manifest,
		Workflows:    records,
		Trees:        trees,
		PackageUsage: pkgUsage,
		Edges:        allEdges,
		Graph:        graph,
		Validation:   validationResult,
		Diagnostics:  collector,
	}

	if err := writeArtifacts(lakeRoot, result, cfg, edgesByWorkflow); err != nil {
		collector.Error(err, diagnostics.Context{Operation: "write-artifacts", Component: "lake", ProjectSlug: proj.Slug})
		return result, fmt.Errorf("write artifacts: %w", err)
	}

	log.Printf("analyzed project %s (%d workflows, %d cycles)", proj.Slug, len(records), len(graph.Cycles))
	return result, nil
}

// maxParseWorkers bounds the per-workflow parse pool; XML parsing is the
// pipeline's only CPU-bound, genuinely parallelizable stage (SPEC_FULL.md
// §5), so it is the only stage run through a worker pool.
const maxParseWorkers = 8

type parseOutcome struct {
	record   WorkflowRecord
	tree     xaml.Tree
	readErr  error
	parseErr error
}

// parseWorkflowsConcurrently reads and parses every candidate workflow
// across a bounded goroutine pool, returning one outcome per candidate in
// input order (each goroutine writes its outcome into its candidate's slot
// of a pre-sized slice, so completion order does not matter and downstream
// sorting stays deterministic regardless of scheduling).
func parseWorkflowsConcurrently(candidates []discovery.Candidate, maxWorkers int) []parseOutcome {
	outcomes := make([]parseOutcome, len(candidates))

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		p.Go(func() {
			workflowID := paths.NormalizeWorkflowID(candidate.RelativePath)
			outcome := parseOutcome{record: WorkflowRecord{ID: workflowID, RelativePath: candidate.RelativePath, Kind: candidate.Kind}}

			if candidate.Kind != "xaml" {
				outcomes[i] = outcome
				return
			}

			content, readErr := os.ReadFile(candidate.AbsolutePath)
			if readErr != nil {
				outcome.readErr = readErr
				outcomes[i] = outcome
				return
			}

			tree, parseErr := xaml.Parse(content)
			if parseErr != nil {
				outcome.parseErr = parseErr
				outcomes[i] = outcome
				return
			}

			outcome.tree = tree
			outcome.record.ParseOK = true
			outcome.record.NodeCount = len(tree.Nodes)
			if tree.RootID != "" {
				outcome.record.ContentHash = nodeHash(tree, tree.RootID)
			}
			outcomes[i] = outcome
		})
	}
	p.Wait()

	return outcomes
}

func nodeHash(tree xaml.Tree, id string) string {
	for _, n := range tree.Nodes {
		if n.ID == id {
			return n.ContentHash
		}
	}
	return ""
}

func writeArtifacts(lakeRoot string, result Result, cfg config.Config, edgesByWorkflow map[string][]invocation.Edge) error {
	l, err := lake.Open(lakeRoot)
	if err != nil {
		return err
	}

	projectDir := result.Project.Slug

	if err := l.WriteJSON(filepath.Join(projectDir, "manifest.json"), result.Manifest, cfg.Output.Summaries); err != nil {
		return err
	}
	if err := l.WriteJSON(filepath.Join(projectDir, "workflows.index.json"), result.Workflows, cfg.Output.Summaries); err != nil {
		return err
	}
	if err := l.WriteJSON(filepath.Join(projectDir, "call-graph.json"), result.Graph, cfg.Output.Summaries); err != nil {
		return err
	}
	if err := l.WriteJSON(filepath.Join(projectDir, "packages.json"), result.PackageUsage, cfg.Output.Summaries); err != nil {
		return err
	}

	invocationLines := make([]any, 0, len(result.Edges))
	for _, e := range result.Edges {
		invocationLines = append(invocationLines, e)
	}
	if err := l.WriteJSONLines(filepath.Join(projectDir, "invocations.jsonl"), invocationLines); err != nil {
		return err
	}

	if cfg.Output.GenerateActivities {
		for id, tree := range result.Trees {
			relPath := filepath.Join(projectDir, "activities", identity.SlugifyName(id)+".json")
			if err := l.WriteJSON(relPath, tree, cfg.Output.Summaries); err != nil {
				return err
			}
		}
	}

	return updateProjectsIndex(l, result.Manifest)
}

// ProjectIndexEntry is one row of the lake-wide projects.json index.
type ProjectIndexEntry struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Root          string `json:"root"`
	WorkflowCount int    `json:"workflowCount"`
	GeneratedAt   string `json:"generatedAt"`
}

func updateProjectsIndex(l *lake.Lake, m Manifest) error {
	const indexRel = "projects.json"
	full := filepath.Join(l.Root, indexRel)

	var entries []ProjectIndexEntry
	if data, err := os.ReadFile(full); err == nil {
		_ = json.Unmarshal(data, &entries)
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.Slug != m.Slug {
			filtered = append(filtered, e)
		}
	}
	entries = append(filtered, ProjectIndexEntry{
		Slug:          m.Slug,
		Name:          m.Name,
		Root:          m.Root,
		WorkflowCount: m.WorkflowCount,
		GeneratedAt:   m.GeneratedAt,
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })

	return l.WriteJSON(indexRel, entries, true)
}
