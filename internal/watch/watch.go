// Package watch re-runs an analysis whenever workflow or descriptor files
// change under a project root, for "rpax parse --watch".
package watch

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rpax-dev/rpax/pkg/logger"
)

var log = logger.Component("watch")

// DebounceInterval coalesces bursts of filesystem events (editors often
// write a file in several steps) into a single re-run.
const DebounceInterval = 300 * time.Millisecond

// relevantSuffixes are the file kinds a change to which should trigger a
// re-run; files with any other suffix are ignored. The lake's own JSON files
// are kept out only by the excluded directory names given to the watcher.
var relevantSuffixes = []string{".xaml", ".json", ".cs"}

func isRelevant(name string) bool {
	for _, suffix := range relevantSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Run watches root (recursively) and invokes onChange once per debounced
// burst of relevant file events, until stop is closed.
func Run(root string, excludeDirs []string, onChange func(), stop <-chan struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addTree(w, root, excludeDirs); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-stop:
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(DebounceInterval, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(DebounceInterval)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)

		case <-fire:
			onChange()
		}
	}
}

func addTree(w *fsnotify.Watcher, root string, excludeDirs []string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		for _, excluded := range excludeDirs {
			if name == excluded {
				return filepath.SkipDir
			}
		}
		if err := w.Add(path); err != nil {
			log.Printf("cannot watch %s: %v", path, err)
		}
		return nil
	})
}
