// Package config loads and validates the rpax configuration file
// (default ".rpax.json"), searched for from the current working directory
// upward, mirroring the teacher's frontmatter-schema loading idiom: a
// //go:embed-ed JSON Schema document compiled once and validated against
// with santhosh-tekuri/jsonschema/v6.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/config_schema.json
var configSchemaJSON []byte

// DefaultFileName is the config file name searched for from CWD upward.
const DefaultFileName = ".rpax.json"

// ProjectConfig is the `project` section: overrides for the descriptor
// otherwise inferred from the project tree.
type ProjectConfig struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Root string `json:"root,omitempty"`
}

// ScanConfig is the `scan` section.
type ScanConfig struct {
	Exclude []string `json:"exclude,omitempty"`
}

// OutputConfig is the `output` section.
type OutputConfig struct {
	Dir                string   `json:"dir,omitempty"`
	Formats            []string `json:"formats,omitempty"`
	Summaries          bool     `json:"summaries,omitempty"`
	GenerateActivities bool     `json:"generate_activities,omitempty"`
}

// ValidationConfig is the `validation` section.
type ValidationConfig struct {
	FailOnMissing bool `json:"fail_on_missing,omitempty"`
	FailOnCycles  bool `json:"fail_on_cycles,omitempty"`
}

// ParserConfig is the `parser` section.
type ParserConfig struct {
	UseEnhanced           bool     `json:"use_enhanced,omitempty"`
	IncludeCodedWorkflows bool     `json:"include_coded_workflows,omitempty"`
	MaxDepth              int      `json:"max_depth,omitempty"`
	IncludeStructural     bool     `json:"include_structural,omitempty"`
	CustomBlacklist       []string `json:"custom_blacklist,omitempty"`
	CustomWhitelist       []string `json:"custom_whitelist,omitempty"`
}

// CycleHandling selects the pseudocode expander's behavior when it revisits
// a workflow already on the current recursion path.
type CycleHandling string

const (
	CycleHandlingMark   CycleHandling = "mark"
	CycleHandlingStop   CycleHandling = "stop"
	CycleHandlingIgnore CycleHandling = "ignore"
)

// PseudocodeConfig is the `pseudocode` section.
type PseudocodeConfig struct {
	GenerateExpanded  bool          `json:"generate_expanded,omitempty"`
	MaxExpansionDepth int           `json:"max_expansion_depth,omitempty"`
	CycleHandling     CycleHandling `json:"cycle_handling,omitempty"`
}

// Config is the full, validated contents of ".rpax.json".
type Config struct {
	Project    ProjectConfig    `json:"project,omitempty"`
	Scan       ScanConfig       `json:"scan,omitempty"`
	Output     OutputConfig     `json:"output,omitempty"`
	Validation ValidationConfig `json:"validation,omitempty"`
	Parser     ParserConfig     `json:"parser,omitempty"`
	Pseudocode PseudocodeConfig `json:"pseudocode,omitempty"`
}

// Default returns the configuration used when no config file is found.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Dir:     ".rpax-lake",
			Formats: []string{"json"},
		},
		Validation: ValidationConfig{
			FailOnMissing: false,
			FailOnCycles:  false,
		},
		Parser: ParserConfig{
			UseEnhanced:           true,
			IncludeCodedWorkflows: true,
			MaxDepth:              0,
			IncludeStructural:     false,
		},
		Pseudocode: PseudocodeConfig{
			GenerateExpanded:  true,
			MaxExpansionDepth: 50,
			CycleHandling:     CycleHandlingMark,
		},
	}
}

var schema *jsonschema.Schema

func compiledSchema() (*jsonschema.Schema, error) {
	if schema != nil {
		return schema, nil
	}
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal embedded config schema: %w", err)
	}
	const uri = "rpax://internal/config-schema.json"
	if err := compiler.AddResource(uri, doc); err != nil {
		return nil, fmt.Errorf("add config schema resource: %w", err)
	}
	s, err := compiler.Compile(uri)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	schema = s
	return schema, nil
}

// Load searches for DefaultFileName starting at dir and walking upward to
// the filesystem root. If none is found, Default() is returned with no
// error. A found file that fails to parse, fails schema validation, or
// declares an unrecognized top-level key is a fatal configuration error.
func Load(dir string) (Config, string, error) {
	path, err := findUpward(dir, DefaultFileName)
	if err != nil {
		return Config{}, "", err
	}
	if path == "" {
		return Default(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, path, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Parse validates raw JSON bytes against the embedded schema and decodes
// them into a Config, merged over Default() for absent sections.
func Parse(data []byte) (Config, error) {
	s, err := compiledSchema()
	if err != nil {
		return Config{}, err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return Config{}, fmt.Errorf("malformed config JSON: %w", err)
	}
	if err := s.Validate(generic); err != nil {
		return Config{}, fmt.Errorf("config schema validation failed: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func findUpward(start, name string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve search root: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
