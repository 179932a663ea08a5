package dev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/sjc5/kit/pkg/typed"
	"github.com/sjc5/lux/internal/common"
)

const watchedDirName = "resources"

var standardIgnoreDirs = []string{"**/node_modules", "**/.git"}

// Watcher batches filesystem changes under the watched roots and reports
// each batch once no new event arrived for the debounce window.
type Watcher struct {
	config       *common.Config
	roots        []string
	fsw          *fsnotify.Watcher
	matchResults typed.SyncMap[string, bool]
}

// NewWatcher watches roots recursively, defaulting to <root>/resources.
func NewWatcher(config *common.Config, roots ...string) (*Watcher, error) {
	config.ApplyDefaults()
	if len(roots) == 0 {
		roots = []string{filepath.Join(config.GetCleanRootDir(), watchedDirName)}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	w := &Watcher{config: config, roots: roots, fsw: fsw}
	for _, root := range roots {
		if err := w.addDirs(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("error adding %s to watcher: %w", root, err)
		}
	}
	return w, nil
}

// Close releases the watcher without running it. Run closes it on its own.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers batches to onBatch until ctx is done. Batches never overlap:
// events arriving while onBatch runs are held for the next one.
func (w *Watcher) Run(ctx context.Context, onBatch func(ctx context.Context, changed []string)) error {
	defer w.fsw.Close()

	debounce := time.Duration(w.config.DevConfig.DebounceMS) * time.Millisecond
	pending := map[string]bool{}
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addDirs(evt.Name); err != nil {
						w.config.Logger.Errorf("error adding directory to watcher: %v", err)
					}
				}
			}
			if !getIsModifyEvt(evt) || w.getIsIgnoredFile(evt.Name) {
				continue
			}
			pending[evt.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timer, timerC = nil, nil
			batch := make([]string, 0, len(pending))
			for name := range pending {
				batch = append(batch, name)
			}
			sort.Strings(batch)
			pending = map[string]bool{}
			onBatch(ctx, batch)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Errorf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) addDirs(path string) error {
	return filepath.WalkDir(path, func(walkedPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.getIsIgnoredDir(walkedPath) {
			return filepath.SkipDir
		}
		return w.fsw.Add(walkedPath)
	})
}

func getIsModifyEvt(evt fsnotify.Event) bool {
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) || evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename)
}

func (w *Watcher) getIsIgnoredDir(path string) bool {
	patterns := append(append([]string{}, standardIgnoreDirs...), w.config.DevConfig.IgnorePatterns.Dirs...)
	return w.getIsIgnored(path, patterns)
}

func (w *Watcher) getIsIgnoredFile(path string) bool {
	return w.getIsIgnored(path, w.config.DevConfig.IgnorePatterns.Files)
}

// getIsIgnored matches patterns against the path relative to the project root.
func (w *Watcher) getIsIgnored(path string, patterns []string) bool {
	rel, err := filepath.Rel(w.config.GetCleanRootDir(), path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if w.getIsMatch(pattern, rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) getIsMatch(pattern, path string) bool {
	key := pattern + "\x00" + path
	if hit, isCached := w.matchResults.Load(key); isCached {
		return hit
	}
	matches, err := doublestar.Match(pattern, path)
	if err != nil {
		w.config.Logger.Errorf("error matching %q: %v", pattern, err)
		return false
	}
	actual, _ := w.matchResults.LoadOrStore(key, matches)
	return actual
}
