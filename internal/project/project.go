// Package project parses a project descriptor (project.json) into the
// normalized Project model and derives its content-addressed slug.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpax-dev/rpax/internal/identity"
)

// Kind is the project's output type, derived from the descriptor's
// designOptions.outputType, defaulting to Process.
type Kind string

const (
	KindProcess Kind = "process"
	KindLibrary Kind = "library"
)

// ExpressionLanguage is the language used inside workflow expressions.
type ExpressionLanguage string

const (
	ExpressionLanguageVB     ExpressionLanguage = "VisualBasic"
	ExpressionLanguageCSharp ExpressionLanguage = "CSharp"
)

// Argument is one input/output/inout parameter of an entry point.
type Argument struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Direction  string `json:"direction,omitempty"` // in, out, inout
	Required   bool   `json:"required,omitempty"`
	Default    string `json:"default,omitempty"`
	Annotation string `json:"annotation,omitempty"`
}

// EntryPoint is a declared entry into the project.
type EntryPoint struct {
	FilePath string     `json:"filePath"`
	ID       string     `json:"id"`
	Input    []Argument `json:"input,omitempty"`
	Output   []Argument `json:"output,omitempty"`
}

// descriptor mirrors the on-disk project.json shape. Unknown fields are
// preserved in Raw for forward compatibility (C2 failure mode: "unknown
// field -> retain verbatim").
type descriptor struct {
	Name               string            `json:"name"`
	ProjectID          string            `json:"projectId,omitempty"`
	Main               string            `json:"main"`
	Dependencies       map[string]string `json:"dependencies,omitempty"`
	EntryPoints        []rawEntryPoint   `json:"entryPoints,omitempty"`
	DesignOptions      *designOptions    `json:"designOptions,omitempty"`
	ExpressionLanguage string            `json:"expressionLanguage,omitempty"`
	SchemaVersion      string            `json:"schemaVersion,omitempty"`
	TargetFramework    string            `json:"targetFramework,omitempty"`
}

type designOptions struct {
	OutputType string `json:"outputType,omitempty"`
}

type rawEntryPoint struct {
	FilePath string     `json:"filePath"`
	UniqueID string     `json:"uniqueId,omitempty"`
	Input    []Argument `json:"input,omitempty"`
	Output   []Argument `json:"output,omitempty"`
}

// Project is the immutable, normalized project descriptor.
type Project struct {
	Name               string
	ID                 string
	Main               string
	Kind               Kind
	Dependencies       map[string]string
	EntryPoints        []EntryPoint
	ExpressionLanguage ExpressionLanguage
	SchemaVersion      string
	TargetFramework    string

	// Slug is the content-addressed project slug derived from Name and the
	// canonical form of the raw descriptor JSON.
	Slug string

	// Root is the project directory path as given to the parser.
	Root string

	raw map[string]any
}

// Raw returns the unknown top-level fields preserved from the source
// descriptor, for forward compatibility.
func (p Project) Raw() map[string]any {
	return p.raw
}

// Parse reads and validates one project.json document rooted at projectRoot.
func Parse(projectRoot string) (Project, error) {
	path := filepath.Join(projectRoot, "project.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("read project descriptor: %w", err)
	}
	return ParseBytes(data, projectRoot)
}

// ParseBytes parses descriptor content directly, used by tests and by
// Parse. projectRoot is recorded on the result but not read from disk here.
func ParseBytes(data []byte, projectRoot string) (Project, error) {
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return Project{}, fmt.Errorf("malformed project descriptor JSON: %w", err)
	}

	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Project{}, fmt.Errorf("malformed project descriptor: %w", err)
	}

	if d.Name == "" {
		return Project{}, fmt.Errorf("project descriptor missing required field: name")
	}
	if d.Main == "" {
		return Project{}, fmt.Errorf("project descriptor missing required field: main")
	}

	kind := KindProcess
	if d.DesignOptions != nil && d.DesignOptions.OutputType == "library" {
		kind = KindLibrary
	}

	exprLang := ExpressionLanguageVB
	if d.ExpressionLanguage == string(ExpressionLanguageCSharp) {
		exprLang = ExpressionLanguageCSharp
	}

	entryPoints := make([]EntryPoint, 0, len(d.EntryPoints))
	for _, ep := range d.EntryPoints {
		id := ep.UniqueID
		if id == "" {
			id = ep.FilePath
		}
		entryPoints = append(entryPoints, EntryPoint{
			FilePath: ep.FilePath,
			ID:       id,
			Input:    ep.Input,
			Output:   ep.Output,
		})
	}
	if len(entryPoints) == 0 {
		entryPoints = append(entryPoints, EntryPoint{FilePath: d.Main, ID: d.Main})
	}

	slug, err := identity.ProjectSlug(d.Name, generic)
	if err != nil {
		return Project{}, fmt.Errorf("compute project slug: %w", err)
	}

	// Remove recognized keys so raw carries only the forward-compatible
	// unrecognized remainder.
	for _, known := range []string{"name", "projectId", "main", "dependencies", "entryPoints", "designOptions", "expressionLanguage", "schemaVersion", "targetFramework"} {
		delete(generic, known)
	}

	return Project{
		Name:               d.Name,
		ID:                 d.ProjectID,
		Main:               d.Main,
		Kind:               kind,
		Dependencies:       d.Dependencies,
		EntryPoints:        entryPoints,
		ExpressionLanguage: exprLang,
		SchemaVersion:      d.SchemaVersion,
		TargetFramework:    d.TargetFramework,
		Slug:               slug,
		Root:               projectRoot,
		raw:                generic,
	}, nil
}
