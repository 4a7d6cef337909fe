// Package discovery walks a project tree to find candidate workflow files:
// XAML files (always) and coded (.cs) workflows (when enabled), applying
// exclude globs and the coded-workflow filename/content heuristics.
package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rpax-dev/rpax/internal/paths"
	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("discovery")

// excludedCodedBasenames lists common non-workflow .cs filenames skipped
// even when coded-workflow discovery is enabled.
var excludedCodedBasenames = map[string]bool{
	"assemblyinfo":  true,
	"globalusings":  true,
	"program":       true,
	"startup":       true,
}

var publicClassPattern = regexp.MustCompile(`(?m)^\s*public\s+(partial\s+)?(sealed\s+)?class\s+\w+`)

// Candidate is one discovered workflow file, before XAML/coded parsing.
type Candidate struct {
	AbsolutePath string // absolute path on disk
	RelativePath string // POSIX-normalized, relative to project root
	Kind         string // "xaml" or "coded"
}

// Excluded is a candidate file that matched an exclude glob and was skipped,
// kept for audit purposes.
type Excluded struct {
	RelativePath string
	Pattern      string
}

// Options configures one discovery run.
type Options struct {
	// IncludeCodedWorkflows enables .cs candidate discovery.
	IncludeCodedWorkflows bool
	// ExcludeGlobs are POSIX-relative-path glob patterns; matches are
	// recorded as excluded and skipped.
	ExcludeGlobs []string
}

// Result is the outcome of one discovery run.
type Result struct {
	Candidates []Candidate
	Excluded   []Excluded
}

// Discover walks projectRoot depth-first and returns every candidate
// workflow file, in deterministic (path-sorted) order.
func Discover(projectRoot string, opts Options) (Result, error) {
	var result Result

	err := filepath.Walk(projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = paths.Normalize(rel)

		kind, ok := classify(rel, opts)
		if !ok {
			return nil
		}

		if pattern, excluded := matchesExclude(rel, opts.ExcludeGlobs); excluded {
			result.Excluded = append(result.Excluded, Excluded{RelativePath: rel, Pattern: pattern})
			log.Printf("excluded %s (matched %s)", rel, pattern)
			return nil
		}

		if kind == "coded" && !looksLikeCodedWorkflow(path) {
			log.Printf("skipped coded candidate %s: no public class declaration found", rel)
			return nil
		}

		result.Candidates = append(result.Candidates, Candidate{
			AbsolutePath: path,
			RelativePath: rel,
			Kind:         kind,
		})
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	sort.Slice(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].RelativePath < result.Candidates[j].RelativePath
	})
	sort.Slice(result.Excluded, func(i, j int) bool {
		return result.Excluded[i].RelativePath < result.Excluded[j].RelativePath
	})

	return result, nil
}

func classify(relPath string, opts Options) (kind string, ok bool) {
	lower := strings.ToLower(relPath)
	switch {
	case strings.HasSuffix(lower, ".xaml"):
		return "xaml", true
	case opts.IncludeCodedWorkflows && strings.HasSuffix(lower, ".cs"):
		base := strings.TrimSuffix(filepath.Base(lower), ".cs")
		if excludedCodedBasenames[base] {
			return "", false
		}
		return "coded", true
	default:
		return "", false
	}
}

func matchesExclude(relPath string, globs []string) (string, bool) {
	for _, pattern := range globs {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return pattern, true
		}
		// filepath.Match doesn't support "**"; fall back to a basic
		// substring check for a leading/trailing "**" wildcard segment.
		if matchesDoubleStarGlob(pattern, relPath) {
			return pattern, true
		}
	}
	return "", false
}

func matchesDoubleStarGlob(pattern, relPath string) bool {
	if !strings.Contains(pattern, "**") {
		return false
	}
	segments := strings.Split(pattern, "**")
	cursor := 0
	for i, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		idx := strings.Index(relPath[cursor:], seg)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 && !strings.HasPrefix(pattern, "**") {
			return false
		}
		cursor += idx + len(seg)
	}
	return true
}

// looksLikeCodedWorkflow restricts coded-workflow discovery to .cs files
// that declare a public class, so arbitrary utility files aren't treated as
// workflows.
func looksLikeCodedWorkflow(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var sb strings.Builder
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	return publicClassPattern.MatchString(sb.String())
}
