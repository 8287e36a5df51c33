package history

import (
	"fmt"
	"os"
	"path/filepath"
)

// Restore rewrites the artifact at relPath under artifactRoot with the
// content snapshot of the history entry at index (0 = oldest), then logs
// the write as a new manual edit. The before state is whatever the
// artifact holds on disk at restore time, so edits made outside tracked
// paths since the last entry are still captured in the restore diff.
func (l *Logger) Restore(artifactRoot, relPath string, index int) error {
	rec := l.store.Read(relPath)
	if index < 0 || index >= len(rec.Entries) {
		return fmt.Errorf("restore %s: entry index %d out of range (log has %d entries)", relPath, index, len(rec.Entries))
	}
	snapshot := rec.Entries[index].ContentSnapshot

	target := filepath.Join(artifactRoot, filepath.FromSlash(relPath))
	var current string
	if data, err := os.ReadFile(target); err == nil {
		current = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("restore %s: read artifact: %w", relPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("restore %s: %w", relPath, err)
	}
	if err := os.WriteFile(target, []byte(snapshot), 0644); err != nil {
		return fmt.Errorf("restore %s: write artifact: %w", relPath, err)
	}

	l.LogEdit(relPath, current, snapshot, SourceManualEdit, "")
	return nil
}
