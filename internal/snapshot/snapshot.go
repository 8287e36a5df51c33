// Package snapshot captures an artifact set before an external bulk
// rewrite and reconciles the rewritten set into individual history
// entries. The rewriter is free to delete and recreate every artifact, so
// the in-memory snapshot is the only surviving record of the before state
// by the time control returns.
package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/highbeam/spectrail/internal/fingerprint"
	"github.com/highbeam/spectrail/internal/history"
)

// FileState is one artifact's content and fingerprint at capture time.
type FileState struct {
	Hash    string
	Content string
}

// Snapshot maps slash-separated artifact paths, relative to the artifact
// root, to their captured state. It lives only in memory and is consumed
// by exactly one Reconcile call; it is never persisted.
type Snapshot map[string]FileState

// Capture walks artifactRoot and records every artifact whose name ends in
// one of suffixes (an empty suffix list matches everything). A missing
// root yields an empty snapshot, not an error.
func Capture(artifactRoot string, suffixes []string) (Snapshot, error) {
	snap := Snapshot{}
	err := walkArtifacts(artifactRoot, suffixes, func(relPath, content string) {
		snap[relPath] = FileState{Hash: fingerprint.Hash(content), Content: content}
	})
	return snap, err
}

// Reconcile walks the post-rewrite artifact set and logs one entry per
// changed path against the pre-rewrite snapshot:
//
//   - fingerprint unchanged: nothing.
//   - fingerprint changed: edit from the snapshot content to the current one.
//   - absent from the snapshot: creation, empty before-content.
//   - absent from the current set: deletion, empty after-content.
//
// Entries carry source ai_generated and the given version tag ("" for
// none). A missing root reads as an empty current set.
func Reconcile(pre Snapshot, artifactRoot string, suffixes []string, logger *history.Logger, tag string) error {
	seen := make(map[string]bool, len(pre))
	err := walkArtifacts(artifactRoot, suffixes, func(relPath, content string) {
		seen[relPath] = true
		prev, ok := pre[relPath]
		switch {
		case !ok:
			logger.LogEdit(relPath, "", content, history.SourceAIGenerated, tag)
		case prev.Hash != fingerprint.Hash(content):
			logger.LogEdit(relPath, prev.Content, content, history.SourceAIGenerated, tag)
		}
	})
	if err != nil {
		return err
	}

	for relPath, prev := range pre {
		if !seen[relPath] {
			logger.LogEdit(relPath, prev.Content, "", history.SourceAIGenerated, tag)
		}
	}
	return nil
}

func walkArtifacts(root string, suffixes []string, fn func(relPath, content string)) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !matchesSuffix(d.Name(), suffixes) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		fn(filepath.ToSlash(rel), string(data))
		return nil
	})
}

func matchesSuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
