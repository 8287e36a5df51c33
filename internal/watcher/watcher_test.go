package watcher

import (
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Filter tests
// ---------------------------------------------------------------------------

func TestFilterDefaultPatterns(t *testing.T) {
	f := NewFilter(nil, nil)

	cases := []struct {
		path string
		want bool
	}{
		{".git/config", true},
		{".spectrail/history/a.feature.history.json", true},
		{"node_modules/package.json", true},
		{".DS_Store", true},
		{"backup.swp", true},
		{"notes~", true},
		{"a.feature.tmp", true},
	}

	for _, tc := range cases {
		if got := f.ShouldIgnore(tc.path); got != tc.want {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFilterAllowsArtifacts(t *testing.T) {
	f := NewFilter(nil, nil)

	cases := []string{
		"login.feature",
		"features/auth/signup.feature",
		"README.md",
	}

	for _, path := range cases {
		if f.ShouldIgnore(path) {
			t.Errorf("ShouldIgnore(%q) = true, expected false", path)
		}
	}
}

func TestFilterCustomPatterns(t *testing.T) {
	f := NewFilter([]string{"*.log", "scratch"}, nil)

	if !f.ShouldIgnore("debug.log") {
		t.Error("custom pattern *.log not applied")
	}
	if !f.ShouldIgnore("scratch/draft.feature") {
		t.Error("custom pattern scratch not applied to nested path")
	}
	if f.ShouldIgnore("login.feature") {
		t.Error("custom patterns should not affect normal artifacts")
	}
}

func TestFilterIsArtifact(t *testing.T) {
	f := NewFilter(nil, []string{".feature"})

	if !f.IsArtifact("features/login.feature") {
		t.Error("IsArtifact(login.feature) = false")
	}
	if f.IsArtifact("features/README.md") {
		t.Error("IsArtifact(README.md) = true")
	}

	// Empty suffix list tracks everything.
	all := NewFilter(nil, nil)
	if !all.IsArtifact("anything.txt") {
		t.Error("empty suffix list should track every file")
	}
}

// ---------------------------------------------------------------------------
// Debouncer tests
// ---------------------------------------------------------------------------

func TestDebouncerCollapsesRapidEvents(t *testing.T) {
	var mu sync.Mutex
	var emitted []Event

	d := NewDebouncer(50*time.Millisecond, func(e Event) {
		mu.Lock()
		emitted = append(emitted, e)
		mu.Unlock()
	})

	for i := 0; i < 10; i++ {
		d.Feed(Event{Path: "a.feature"})
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) != 1 {
		t.Errorf("emitted %d events, want 1", len(emitted))
	}
}

func TestDebouncerKeepsPathsIndependent(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}

	d := NewDebouncer(30*time.Millisecond, func(e Event) {
		mu.Lock()
		seen[e.Path]++
		mu.Unlock()
	})

	d.Feed(Event{Path: "a.feature"})
	d.Feed(Event{Path: "b.feature"})

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if seen["a.feature"] != 1 || seen["b.feature"] != 1 {
		t.Errorf("seen = %v, want one emission per path", seen)
	}
}

func TestDebouncerStopFlushesPending(t *testing.T) {
	var mu sync.Mutex
	var emitted []Event

	d := NewDebouncer(time.Hour, func(e Event) {
		mu.Lock()
		emitted = append(emitted, e)
		mu.Unlock()
	})

	d.Feed(Event{Path: "a.feature"})
	d.Stop()

	mu.Lock()
	if len(emitted) != 1 {
		t.Errorf("emitted %d events after Stop, want 1", len(emitted))
	}
	mu.Unlock()

	// Feed after Stop is a no-op.
	d.Feed(Event{Path: "b.feature"})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) != 1 {
		t.Errorf("emitted %d events, want 1 (Feed after Stop must be dropped)", len(emitted))
	}
}
