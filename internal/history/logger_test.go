package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/highbeam/spectrail/internal/fingerprint"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	s := quietStore(t, 0)
	l := NewLogger(s, 0)
	l.SetWarnf(func(format string, args ...any) { t.Logf(format, args...) })
	return l
}

// ---------------------------------------------------------------------------
// LogEdit
// ---------------------------------------------------------------------------

func TestLogEditNoOpOnIdenticalContent(t *testing.T) {
	l := newTestLogger(t)

	content := "Feature: login\n"
	l.LogEdit("a.feature", content, content, SourceManualEdit, "")

	if got := len(l.Store().Read("a.feature").Entries); got != 0 {
		t.Errorf("len(Entries) = %d, want 0 for identical content", got)
	}
}

func TestLogEditRecordsOneEntry(t *testing.T) {
	l := newTestLogger(t)

	oldContent := "Feature: login\n  Scenario: ok\n"
	newContent := "Feature: login\n  Scenario: rejected\n"
	l.LogEdit("a.feature", oldContent, newContent, SourceAIRefined, "run-7")

	entries := l.Store().Read("a.feature").Entries
	if len(entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Error("entry has empty ID")
	}
	if e.Timestamp.IsZero() {
		t.Error("entry has zero Timestamp")
	}
	if e.Source != SourceAIRefined {
		t.Errorf("Source = %q, want %q", e.Source, SourceAIRefined)
	}
	if e.ContentHashBefore != fingerprint.Hash(oldContent) {
		t.Errorf("ContentHashBefore = %q, want hash of old content", e.ContentHashBefore)
	}
	if e.ContentHashAfter != fingerprint.Hash(newContent) {
		t.Errorf("ContentHashAfter = %q, want hash of new content", e.ContentHashAfter)
	}
	if e.ContentSnapshot != newContent {
		t.Errorf("ContentSnapshot = %q, want the post-edit content", e.ContentSnapshot)
	}
	if e.LinesAdded != 1 || e.LinesRemoved != 1 {
		t.Errorf("counts = +%d/-%d, want +1/-1", e.LinesAdded, e.LinesRemoved)
	}
	if e.VersionTag != "run-7" {
		t.Errorf("VersionTag = %q, want %q", e.VersionTag, "run-7")
	}
}

func TestLogEditAssignsFreshIDs(t *testing.T) {
	l := newTestLogger(t)

	l.LogEdit("a.feature", "", "one", SourceManualEdit, "")
	l.LogEdit("a.feature", "one", "two", SourceManualEdit, "")

	entries := l.Store().Read("a.feature").Entries
	if len(entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(entries))
	}
	if entries[0].ID == entries[1].ID {
		t.Errorf("both entries share ID %q", entries[0].ID)
	}
	if entries[1].Timestamp.Before(entries[0].Timestamp) {
		t.Error("timestamps decreased within one log")
	}
}

func TestLogEditSwallowsPersistenceFailure(t *testing.T) {
	// Point the store's root at a regular file so MkdirAll inside Append
	// fails. LogEdit must warn, not propagate.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(blocker, 0)
	s.SetWarnf(func(format string, args ...any) { t.Logf(format, args...) })
	l := NewLogger(s, 0)

	var warning string
	l.SetWarnf(func(format string, args ...any) {
		warning = fmt.Sprintf(format, args...)
	})

	l.LogEdit("sub/a.feature", "", "content", SourceManualEdit, "")

	if warning == "" {
		t.Fatal("expected a warning for the failed append")
	}
	if !strings.Contains(warning, "sub/a.feature") {
		t.Errorf("warning %q does not name the artifact", warning)
	}
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

func TestRestoreWritesSnapshotAndLogsManualEdit(t *testing.T) {
	artifactRoot := t.TempDir()
	l := newTestLogger(t)

	versions := []string{"v zero\n", "v one\n", "v two\n"}
	prev := ""
	for _, v := range versions {
		l.LogEdit("a.feature", prev, v, SourceAIGenerated, "")
		prev = v
	}
	target := filepath.Join(artifactRoot, "a.feature")
	if err := os.WriteFile(target, []byte(versions[2]), 0644); err != nil {
		t.Fatal(err)
	}

	if err := l.Restore(artifactRoot, "a.feature", 1); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != versions[1] {
		t.Errorf("artifact = %q after restore, want %q", data, versions[1])
	}

	entries := l.Store().Read("a.feature").Entries
	if len(entries) != 4 {
		t.Fatalf("len(Entries) = %d, want 4", len(entries))
	}
	last := entries[3]
	if last.Source != SourceManualEdit {
		t.Errorf("restore entry Source = %q, want %q", last.Source, SourceManualEdit)
	}
	if last.ContentHashAfter != fingerprint.Hash(versions[1]) {
		t.Errorf("restore entry ContentHashAfter = %q, want hash of restored snapshot", last.ContentHashAfter)
	}
	if last.ContentHashBefore != fingerprint.Hash(versions[2]) {
		t.Errorf("restore entry ContentHashBefore = %q, want hash of pre-restore content", last.ContentHashBefore)
	}
}

func TestRestoreIndexOutOfRange(t *testing.T) {
	l := newTestLogger(t)
	l.LogEdit("a.feature", "", "content", SourceManualEdit, "")

	if err := l.Restore(t.TempDir(), "a.feature", 3); err == nil {
		t.Error("Restore with out-of-range index succeeded, want error")
	}
	if err := l.Restore(t.TempDir(), "a.feature", -1); err == nil {
		t.Error("Restore with negative index succeeded, want error")
	}
}
