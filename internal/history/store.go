package history

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RecordSuffix distinguishes history records from the artifacts they
// describe, so the two namespaces never collide even under one root.
const RecordSuffix = ".history.json"

// DefaultRetention is the number of entries kept per artifact log.
const DefaultRetention = 50

// Store owns the on-disk history records under one history root. Each
// record mirrors its artifact's path relative to the tracked root, plus
// RecordSuffix. History is advisory: the live artifact file stays
// authoritative, and callers must serialize appends per artifact path
// themselves (the store does no cross-process locking).
type Store struct {
	root      string
	retention int
	warnf     func(format string, args ...any)
}

// NewStore creates a Store rooted at root. retention <= 0 selects
// DefaultRetention. Non-fatal warnings go to log.Printf until SetWarnf.
func NewStore(root string, retention int) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{root: root, retention: retention, warnf: log.Printf}
}

// SetWarnf redirects non-fatal warnings (corrupt records, unreadable
// files) away from the default log.Printf.
func (s *Store) SetWarnf(warnf func(format string, args ...any)) {
	s.warnf = warnf
}

// RecordPath returns the on-disk record location for an artifact path
// given relative to the tracked root, slash-separated.
func (s *Store) RecordPath(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath)) + RecordSuffix
}

// Read loads the history log for relPath. A missing record yields an
// empty log. An unparsable record is moved aside rather than discarded, a
// warning is emitted, and an empty log is returned. Read never fails: the
// next Append simply starts a fresh log.
func (s *Store) Read(relPath string) *Log {
	data, err := os.ReadFile(s.RecordPath(relPath))
	if err != nil {
		if !os.IsNotExist(err) {
			s.warnf("history: read record for %s: %v", relPath, err)
		}
		return &Log{FilePath: relPath}
	}

	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		s.quarantine(relPath, err)
		return &Log{FilePath: relPath}
	}
	if l.FilePath == "" {
		l.FilePath = relPath
	}
	return &l
}

// Append adds entry to relPath's log, prunes to the retention cap keeping
// the newest entries, and persists. The write goes through a temp file and
// a rename so a crash mid-write can never leave the record in a state
// worse than missing.
func (s *Store) Append(relPath string, entry Entry) error {
	l := s.Read(relPath)
	l.Entries = append(l.Entries, entry)
	if n := len(l.Entries); n > s.retention {
		l.Entries = append([]Entry(nil), l.Entries[n-s.retention:]...)
	}
	return s.write(relPath, l)
}

// Purge removes relPath's record. A missing record is not an error.
func (s *Store) Purge(relPath string) error {
	if err := os.Remove(s.RecordPath(relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("purge history for %s: %w", relPath, err)
	}
	return nil
}

// Walk visits every history record under the root in lexical path order,
// decoding each through Read (so corrupt records are quarantined and
// visited as empty, not surfaced as errors). A missing root visits
// nothing.
func (s *Store) Walk(fn func(relPath string, l *Log) error) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), RecordSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		relPath := filepath.ToSlash(strings.TrimSuffix(rel, RecordSuffix))
		return fn(relPath, s.Read(relPath))
	})
}

func (s *Store) write(relPath string, l *Log) error {
	rec := s.RecordPath(relPath)
	if err := os.MkdirAll(filepath.Dir(rec), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", relPath, err)
	}

	tmp := rec + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write record for %s: %w", relPath, err)
	}
	if err := os.Rename(tmp, rec); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace record for %s: %w", relPath, err)
	}
	return nil
}

// quarantine moves an unparsable record aside so it is not silently lost.
func (s *Store) quarantine(relPath string, cause error) {
	rec := s.RecordPath(relPath)
	backup := fmt.Sprintf("%s.corrupt-%d", rec, time.Now().Unix())
	if err := os.Rename(rec, backup); err != nil {
		s.warnf("history: corrupt record for %s (%v); backup also failed: %v", relPath, cause, err)
		return
	}
	s.warnf("history: corrupt record for %s (%v); moved aside to %s", relPath, cause, filepath.Base(backup))
}
