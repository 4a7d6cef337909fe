// Package diagnostics collects errors, warnings, and informational entries
// raised during a single rpax run and flushes them to a lake-level errors
// directory on completion. It is the only mutable state shared across an
// otherwise pure, explicitly-threaded pipeline.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("diagnostics")

// Severity classifies a diagnostic entry's importance.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Context carries where an entry originated in the pipeline.
type Context struct {
	Operation   string            `json:"operation"`
	Component   string            `json:"component"`
	ProjectSlug string            `json:"projectSlug,omitempty"`
	ProjectRoot string            `json:"projectRoot,omitempty"`
	WorkflowID  string            `json:"workflowPath,omitempty"`
	Extra       map[string]string `json:"additionalContext,omitempty"`
}

// Entry is a single diagnostic occurrence.
type Entry struct {
	ErrorID   string   `json:"errorId"`
	RunID     string   `json:"runId"`
	Timestamp string   `json:"timestamp"`
	Severity  Severity `json:"severity"`
	ErrorKind string   `json:"errorType"`
	Message   string   `json:"message"`
	Context   Context  `json:"context"`
	Trace     []string `json:"tracebackLines,omitempty"`
}

// summary is the JSON document written to `_errors/<run-id>.json`.
type summary struct {
	SchemaVersion    string         `json:"schema_version"`
	RunID            string         `json:"run_id"`
	Command          string         `json:"command"`
	StartedAt        string         `json:"started_at"`
	CompletedAt      string         `json:"completed_at"`
	DurationSeconds  float64        `json:"duration_seconds"`
	TotalErrors      int            `json:"total_errors"`
	ErrorsBySeverity map[string]int `json:"errors_by_severity"`
	Errors           []Entry        `json:"errors"`
}

type indexRun struct {
	RunID            string         `json:"run_id"`
	Command          string         `json:"command"`
	StartedAt        string         `json:"started_at"`
	DurationSeconds  float64        `json:"duration_seconds"`
	TotalErrors      int            `json:"total_errors"`
	ErrorsBySeverity map[string]int `json:"errors_by_severity"`
	ErrorFile        string         `json:"error_file"`
}

type index struct {
	SchemaVersion string     `json:"schema_version"`
	CreatedAt     string     `json:"created_at"`
	LastUpdated   string     `json:"last_updated"`
	TotalRuns     int        `json:"total_runs"`
	Description   string     `json:"description"`
	Runs          []indexRun `json:"runs"`
}

const maxRetainedRuns = 100

// Collector is run-scoped mutable state: created at CLI entry, passed
// explicitly through the pipeline, flushed once at exit.
type Collector struct {
	mu        sync.Mutex
	lakeRoot  string
	command   string
	runID     string
	startedAt time.Time
	entries   []Entry
}

// New creates a collector for one CLI invocation.
func New(lakeRoot, command string) *Collector {
	c := &Collector{
		lakeRoot:  lakeRoot,
		command:   command,
		runID:     generateRunID(time.Now().UTC()),
		startedAt: time.Now().UTC(),
	}
	log.Printf("initialized collector for run %s", c.runID)
	return c
}

// RunID returns the run identifier assigned at construction.
func (c *Collector) RunID() string {
	return c.runID
}

// Add records an entry with the given severity.
func (c *Collector) Add(severity Severity, errKind, message string, ctx Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New().String()[:8]
	entry := Entry{
		ErrorID:   id,
		RunID:     c.runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  severity,
		ErrorKind: errKind,
		Message:   message,
		Context:   ctx,
	}
	c.entries = append(c.entries, entry)
	log.Printf("collected %s %s: %s (%s)", severity, id, message, errKind)
	return id
}

// Error records an entry at error severity from a Go error value.
func (c *Collector) Error(err error, ctx Context) string {
	return c.Add(SeverityError, fmt.Sprintf("%T", err), err.Error(), ctx)
}

// Warning records a recoverable issue.
func (c *Collector) Warning(message string, ctx Context) string {
	return c.Add(SeverityWarning, "RuntimeWarning", message, ctx)
}

// Info records a notable, non-error event.
func (c *Collector) Info(message string, ctx Context) string {
	return c.Add(SeverityInfo, "RuntimeInfo", message, ctx)
}

// Critical records a severity that should usually force a non-zero exit.
func (c *Collector) Critical(message string, ctx Context) string {
	return c.Add(SeverityCritical, "RuntimeError", message, ctx)
}

// HasErrors reports whether any error-or-worse entries were collected.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Severity == SeverityError || e.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// HasCritical reports whether any critical entries were collected.
func (c *Collector) HasCritical() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Counts returns the number of entries per severity.
func (c *Collector) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := map[string]int{
		string(SeverityCritical): 0,
		string(SeverityError):    0,
		string(SeverityWarning):  0,
		string(SeverityInfo):     0,
	}
	for _, e := range c.entries {
		counts[string(e.Severity)]++
	}
	return counts
}

// Entries returns a copy of the collected entries.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Flush writes the collected entries to `_errors/<run-id>.json` and updates
// the rollover index. It returns the written file path, or "" if nothing was
// collected. It returns an error if the errors directory or the run file
// cannot be written; a failure to update the index is only logged.
func (c *Collector) Flush() (string, error) {
	c.mu.Lock()
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	c.mu.Unlock()

	if len(entries) == 0 {
		log.Printf("no entries to flush for run %s", c.runID)
		return "", nil
	}

	errorsDir := filepath.Join(c.lakeRoot, "_errors")
	if err := os.MkdirAll(errorsDir, 0o755); err != nil {
		return "", fmt.Errorf("create errors dir: %w", err)
	}

	end := time.Now().UTC()
	counts := c.Counts()
	s := summary{
		SchemaVersion:    "1.0.0",
		RunID:            c.runID,
		Command:          c.command,
		StartedAt:        c.startedAt.Format(time.RFC3339),
		CompletedAt:      end.Format(time.RFC3339),
		DurationSeconds:  end.Sub(c.startedAt).Seconds(),
		TotalErrors:      len(entries),
		ErrorsBySeverity: counts,
		Errors:           entries,
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal error summary: %w", err)
	}

	errorFile := filepath.Join(errorsDir, c.runID+".json")
	if err := writeAtomic(errorFile, data); err != nil {
		return "", fmt.Errorf("write error summary: %w", err)
	}

	if err := updateIndex(errorsDir, s); err != nil {
		log.Printf("failed to update errors index: %v", err)
	}

	log.Printf("flushed %d entries to %s", len(entries), errorFile)
	return errorFile, nil
}

func updateIndex(errorsDir string, s summary) error {
	indexFile := filepath.Join(errorsDir, "index.json")

	var idx index
	if data, err := os.ReadFile(indexFile); err == nil {
		if jerr := json.Unmarshal(data, &idx); jerr != nil {
			log.Printf("failed to read errors index, creating new one: %v", jerr)
			idx = newEmptyIndex()
		}
	} else {
		idx = newEmptyIndex()
	}

	filtered := idx.Runs[:0]
	for _, r := range idx.Runs {
		if r.RunID != s.RunID {
			filtered = append(filtered, r)
		}
	}
	idx.Runs = filtered

	idx.Runs = append(idx.Runs, indexRun{
		RunID:            s.RunID,
		Command:          s.Command,
		StartedAt:        s.StartedAt,
		DurationSeconds:  s.DurationSeconds,
		TotalErrors:      s.TotalErrors,
		ErrorsBySeverity: s.ErrorsBySeverity,
		ErrorFile:        s.RunID + ".json",
	})
	sort.Slice(idx.Runs, func(i, j int) bool {
		return idx.Runs[i].StartedAt > idx.Runs[j].StartedAt
	})

	idx.TotalRuns = len(idx.Runs)
	idx.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if len(idx.Runs) > maxRetainedRuns {
		for _, old := range idx.Runs[maxRetainedRuns:] {
			_ = os.Remove(filepath.Join(errorsDir, old.ErrorFile))
		}
		idx.Runs = idx.Runs[:maxRetainedRuns]
		idx.TotalRuns = maxRetainedRuns
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(indexFile, data)
}

func newEmptyIndex() index {
	now := time.Now().UTC().Format(time.RFC3339)
	return index{
		SchemaVersion: "1.0.0",
		CreatedAt:     now,
		LastUpdated:   now,
		TotalRuns:     0,
		Description:   "Lake-level diagnostics collection index for rpax runs",
		Runs:          []indexRun{},
	}
}

func generateRunID(t time.Time) string {
	return fmt.Sprintf("run-%s-%s", t.Format("20060102-150405"), uuid.New().String()[:8])
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
