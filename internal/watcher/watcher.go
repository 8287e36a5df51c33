// Package watcher turns out-of-band artifact changes into history entries.
// The history engine never polls or watches the filesystem itself; this
// package is the change-notification collaborator that feeds it, tagging
// everything it sees as an external edit.
package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/highbeam/spectrail/internal/config"
	"github.com/highbeam/spectrail/internal/history"
)

// Watcher monitors the artifact root, filters ignored paths, debounces
// rapid changes, and logs the surviving events as external edits.
type Watcher struct {
	cfg       *config.Config
	logger    *history.Logger
	fsw       *fsnotify.Watcher
	filter    *Filter
	debouncer *Debouncer
}

// New creates a Watcher wired to the given config and edit logger.
func New(cfg *config.Config, logger *history.Logger) *Watcher {
	return &Watcher{
		cfg:    cfg,
		logger: logger,
	}
}

// Start begins watching the artifact root recursively. It blocks until ctx
// is cancelled. Call Stop for ordered teardown.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	w.filter = NewFilter(w.cfg.IgnorePatterns, w.cfg.ArtifactSuffixes)
	w.debouncer = NewDebouncer(time.Duration(w.cfg.DebounceMS)*time.Millisecond, w.record)

	if err := w.addRecursive(w.cfg.ArtifactRoot); err != nil {
		log.Printf("watcher: walk %s: %v", w.cfg.ArtifactRoot, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: fsnotify error: %v", err)
		}
	}
}

// Stop drains the debouncer (logging pending edits) and closes fsnotify.
func (w *Watcher) Stop() {
	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
}

// handleEvent filters and debounces a single fsnotify event.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if w.filter.ShouldIgnore(ev.Name) {
		return
	}

	// A newly created directory needs its own watch.
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
			return
		}
	}

	if !w.filter.IsArtifact(ev.Name) {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return // chmod-only, not interesting
	}

	w.debouncer.Feed(Event{Path: ev.Name})
}

// record logs one debounced external change. The before content is the
// newest stored snapshot: the external writer already replaced the file by
// the time the event fires, so the history record is the only source of
// the prior state. Identical content is dropped by the logger's no-op rule.
func (w *Watcher) record(e Event) {
	rel, err := filepath.Rel(w.cfg.ArtifactRoot, e.Path)
	if err != nil {
		log.Printf("watcher: relativize %s: %v", e.Path, err)
		return
	}
	relPath := filepath.ToSlash(rel)

	var current string
	if data, err := os.ReadFile(e.Path); err == nil {
		current = string(data)
	} else if !os.IsNotExist(err) {
		log.Printf("watcher: read %s: %v", e.Path, err)
		return
	}

	var before string
	if entries := w.logger.Store().Read(relPath).Entries; len(entries) > 0 {
		before = entries[len(entries)-1].ContentSnapshot
	}

	w.logger.LogEdit(relPath, before, current, history.SourceExternalEdit, "")
}

// addRecursive walks root and adds every directory that is not ignored.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if w.filter.ShouldIgnore(path) {
			return filepath.SkipDir
		}
		_ = w.fsw.Add(path)
		return nil
	})
}
