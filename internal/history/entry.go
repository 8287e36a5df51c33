// Package history implements the append-only edit log kept for each
// tracked artifact: the on-disk record store, the edit logger that feeds
// it, and restore from stored snapshots.
package history

import (
	"fmt"
	"time"
)

// Source tags where an edit came from. Informational only; the engine
// never branches on it.
type Source string

const (
	SourceManualEdit      Source = "manual_edit"
	SourceAIGenerated     Source = "ai_generated"
	SourceAIRefined       Source = "ai_refined"
	SourceExternalEdit    Source = "external_edit"
	SourceVersionSnapshot Source = "version_snapshot"
)

// ParseSource validates a source name supplied from outside (flags,
// collaborator input) against the known set.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceManualEdit, SourceAIGenerated, SourceAIRefined, SourceExternalEdit, SourceVersionSnapshot:
		return Source(s), nil
	}
	return "", fmt.Errorf("unknown edit source %q", s)
}

// Entry is one recorded change to an artifact.
//
// The JSON field names are a persisted contract: readers must tolerate
// unknown fields and treat a missing entries array as empty, so fields are
// only ever added, never renamed.
type Entry struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Source            Source    `json:"source"`
	ContentHashBefore string    `json:"contentHashBefore"`
	ContentHashAfter  string    `json:"contentHashAfter"`
	ContentSnapshot   string    `json:"contentSnapshot"`
	LinesAdded        int       `json:"linesAdded"`
	LinesRemoved      int       `json:"linesRemoved"`
	DiffSummary       string    `json:"diffSummary"`
	VersionTag        string    `json:"versionTag,omitempty"`
}

// Log is the ordered edit history of a single artifact, oldest entry
// first. Timestamps are non-decreasing; ties keep insertion order because
// entries are only ever appended at the tail.
type Log struct {
	FilePath string  `json:"filePath"`
	Entries  []Entry `json:"entries"`
}
