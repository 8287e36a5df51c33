package watcher

import (
	"path/filepath"
	"strings"
)

// defaultIgnorePatterns are always ignored regardless of configuration.
// The history data dir itself must be here, or the watcher would log its
// own record writes.
var defaultIgnorePatterns = []string{
	".git",
	".spectrail",
	"node_modules",
	"__pycache__",
	"*.swp",
	"*.swo",
	"*~",
	"*.tmp",
	".DS_Store",
}

// Filter decides which paths the watcher acts on: ignore patterns are
// glob-matched against every path component, and only files carrying one
// of the artifact suffixes count as artifacts.
type Filter struct {
	patterns []string
	suffixes []string
}

// NewFilter merges the default ignore patterns with any user-supplied
// ones, dropping duplicates. An empty suffix list tracks every file that
// is not ignored.
func NewFilter(extra, suffixes []string) *Filter {
	seen := make(map[string]struct{}, len(defaultIgnorePatterns)+len(extra))
	var merged []string
	for _, p := range append(append([]string(nil), defaultIgnorePatterns...), extra...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		merged = append(merged, p)
	}
	return &Filter{patterns: merged, suffixes: suffixes}
}

// ShouldIgnore returns true if any component of path matches an ignore
// pattern, so "node_modules" is caught even when deeply nested.
func (f *Filter) ShouldIgnore(path string) bool {
	cleaned := filepath.Clean(path)
	for _, component := range strings.Split(cleaned, string(filepath.Separator)) {
		for _, pattern := range f.patterns {
			if matched, _ := filepath.Match(pattern, component); matched {
				return true
			}
		}
	}
	return false
}

// IsArtifact reports whether the file name carries a tracked suffix.
func (f *Filter) IsArtifact(path string) bool {
	if len(f.suffixes) == 0 {
		return true
	}
	name := filepath.Base(path)
	for _, s := range f.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
