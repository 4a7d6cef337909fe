// Package lake implements the artifact writer (atomic, stably-ordered JSON
// emission under a content-addressed directory layout) and the bidirectional
// URI <-> filesystem-path resolver over that layout.
package lake

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("lake")

// Lake is a handle on one artifact-lake root directory.
type Lake struct {
	Root string
}

// Open returns a handle on the lake root, creating it if absent.
func Open(root string) (*Lake, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Lake{Root: root}, nil
}

// ProjectDir returns the project's subdirectory under the lake root.
func (l *Lake) ProjectDir(projectSlug string) string {
	return filepath.Join(l.Root, projectSlug)
}

// WriteJSON serializes v and writes it atomically (temp file, then rename)
// to relPath under the lake root. Parent directories are created as needed.
func (l *Lake) WriteJSON(relPath string, v any, indent bool) error {
	full := filepath.Join(l.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	return writeAtomic(full, data)
}

// WriteJSONLines writes one JSON object per line, the streaming-friendly
// format used for invocations.jsonl.
func (l *Lake) WriteJSONLines(relPath string, items []any) error {
	full := filepath.Join(l.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	var buf []byte
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	return writeAtomic(full, buf)
}

func writeAtomic(full string, data []byte) error {
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		log.Printf("atomic rename failed for %s: %v", full, err)
		return err
	}
	return nil
}
