// Package packages resolves a project's declared dependencies against the
// packages discovered across its workflows and classifies each declared
// dependency as vendor-official, custom-local, third-party, or ambiguous.
package packages

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("packages")

// Classification is the dependency-classifier's verdict for one package.
type Classification string

const (
	ClassVendorOfficial Classification = "vendor-official"
	ClassCustomLocal    Classification = "custom-local"
	ClassThirdParty     Classification = "third-party"
	ClassAmbiguous      Classification = "ambiguous"
)

// VendorPrefix is the authoring-tool's own package prefix, always
// classified vendor-official.
const VendorPrefix = "UiPath."

// Usage is the package-analysis record for one package name across the
// project's workflows.
type Usage struct {
	Name       string         `json:"name"`
	Version    string         `json:"version,omitempty"`
	Workflows  []string       `json:"workflows"`
	Declared   bool           `json:"declared"`
	Used       bool           `json:"used"`
	Class      Classification `json:"classification"`
	LocalPath  string         `json:"localPath,omitempty"`
	Confidence float64        `json:"confidence"`
}

// Cache is the persisted "packages.cache.json" lake-level record of prior
// human/LLM classification decisions, consulted before local-directory
// search.
type Cache struct {
	Decisions map[string]Classification `json:"decisions"`
}

// LoadCache reads a packages.cache.json file. A missing file yields an
// empty, usable cache rather than an error.
func LoadCache(path string) (Cache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Cache{Decisions: map[string]Classification{}}, nil
	}
	if err != nil {
		return Cache{}, err
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return Cache{}, err
	}
	if c.Decisions == nil {
		c.Decisions = map[string]Classification{}
	}
	return c, nil
}

// Save persists the cache back to disk via an atomic write.
func (c Cache) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SanitizeForLocalMatch applies the project-name sanitization rule used for
// local-candidate directory matching: replace any space with a dot,
// preserve underscores/dashes/dots and Unicode letters, leave case
// unchanged.
func SanitizeForLocalMatch(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == ' ' {
			b.WriteByte('.')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Analyze produces the package-usage record set. declaredDeps is the
// project's declared dependency map (name -> version). perWorkflowPackages
// maps a workflow ID to the set of packages its namespaces resolved to.
// localSearchRoots are directories searched for a sanitized-name match when
// classifying an undeclared-cache dependency as custom-local.
func Analyze(declaredDeps map[string]string, perWorkflowPackages map[string][]string, cache Cache, localSearchRoots []string) []Usage {
	union := map[string]*Usage{}

	for name, version := range declaredDeps {
		union[name] = &Usage{Name: name, Version: version, Declared: true}
	}

	for workflowID, pkgs := range perWorkflowPackages {
		for _, name := range pkgs {
			u, ok := union[name]
			if !ok {
				u = &Usage{Name: name}
				union[name] = u
			}
			u.Used = true
			u.Workflows = append(u.Workflows, workflowID)
		}
	}

	names := make([]string, 0, len(union))
	for name := range union {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Usage, 0, len(names))
	for _, name := range names {
		u := union[name]
		sort.Strings(u.Workflows)
		classify(u, cache, localSearchRoots)
		result = append(result, *u)
	}
	return result
}

func classify(u *Usage, cache Cache, localSearchRoots []string) {
	switch {
	case strings.HasPrefix(u.Name, VendorPrefix):
		u.Class = ClassVendorOfficial
		u.Confidence = 0.95
	case hasCachedDecision(cache, u.Name):
		u.Class = cache.Decisions[u.Name]
		u.Confidence = 0.8
	default:
		if path, ok := findLocalCandidate(u.Name, localSearchRoots); ok {
			u.Class = ClassCustomLocal
			u.LocalPath = path
			u.Confidence = 0.7
		} else {
			u.Class = ClassAmbiguous
			u.Confidence = 0.3
			log.Printf("ambiguous dependency classification: %s", u.Name)
		}
	}
}

func hasCachedDecision(cache Cache, name string) bool {
	_, ok := cache.Decisions[name]
	return ok
}

func findLocalCandidate(name string, roots []string) (string, bool) {
	sanitized := SanitizeForLocalMatch(name)
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() && e.Name() == sanitized {
				return root + "/" + e.Name(), true
			}
		}
	}
	return "", false
}
