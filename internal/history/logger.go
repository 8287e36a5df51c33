package history

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/highbeam/spectrail/internal/fingerprint"
	"github.com/highbeam/spectrail/internal/linediff"
)

// Logger is the engine's write path: it suppresses no-op saves,
// fingerprints both sides of the change, builds the bounded diff summary,
// and appends the entry to the store.
type Logger struct {
	store   *Store
	diffCap int
	warnf   func(format string, args ...any)
}

// NewLogger wires a Logger to store. diffCap bounds the diff summary;
// <= 0 selects linediff.DefaultSummaryLines.
func NewLogger(store *Store, diffCap int) *Logger {
	if diffCap <= 0 {
		diffCap = linediff.DefaultSummaryLines
	}
	return &Logger{store: store, diffCap: diffCap, warnf: log.Printf}
}

// SetWarnf redirects failure reports away from the default log.Printf.
func (l *Logger) SetWarnf(warnf func(format string, args ...any)) {
	l.warnf = warnf
}

// Store returns the store this logger appends to.
func (l *Logger) Store() *Store {
	return l.store
}

// LogEdit records one edit to relPath. Byte-identical old and new content
// is a silent no-op. Any failure is reported through the warning channel
// and never propagated: recording history must not block or roll back the
// save it describes, which is always the higher-priority action.
func (l *Logger) LogEdit(relPath, oldContent, newContent string, source Source, versionTag string) {
	if oldContent == newContent {
		return
	}

	d := linediff.Compare(oldContent, newContent, l.diffCap)
	entry := Entry{
		ID:                uuid.NewString(),
		Timestamp:         time.Now().UTC(),
		Source:            source,
		ContentHashBefore: fingerprint.Hash(oldContent),
		ContentHashAfter:  fingerprint.Hash(newContent),
		ContentSnapshot:   newContent,
		LinesAdded:        d.LinesAdded,
		LinesRemoved:      d.LinesRemoved,
		DiffSummary:       d.Summary,
		VersionTag:        versionTag,
	}

	if err := l.store.Append(relPath, entry); err != nil {
		l.warnf("history: record edit to %s: %v", relPath, err)
	}
}
