package watcher

import (
	"sync"
	"time"
)

// Event is a single debounced artifact change. Only the path matters: the
// recorder re-reads current state when the event finally fires, so stale
// intermediate writes collapse into one entry.
type Event struct {
	Path string
}

// Debouncer collapses rapid events for the same path into a single
// emission after a quiet window. Editors and generators often write a file
// several times in quick succession; without this the history log fills
// with partial saves. Safe for concurrent use.
type Debouncer struct {
	window time.Duration
	emit   func(Event)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]Event
	stopped bool
}

// NewDebouncer creates a Debouncer that waits for window of silence on a
// given path before emitting the most recent event for that path.
func NewDebouncer(window time.Duration, emit func(Event)) *Debouncer {
	return &Debouncer{
		window:  window,
		emit:    emit,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]Event),
	}
}

// Feed receives a raw event, resetting the path's timer if one is already
// running.
func (d *Debouncer) Feed(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[e.Path] = e

	if t, ok := d.timers[e.Path]; ok {
		t.Reset(d.window)
		return
	}

	path := e.Path
	d.timers[path] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		ev, ok := d.pending[path]
		delete(d.timers, path)
		delete(d.pending, path)
		d.mu.Unlock()
		if ok {
			d.emit(ev)
		}
	})
}

// Stop cancels all pending timers and immediately emits their events so no
// observed change is lost on shutdown. Subsequent Feed calls are no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true

	var toEmit []Event
	for path, t := range d.timers {
		t.Stop()
		if ev, ok := d.pending[path]; ok {
			toEmit = append(toEmit, ev)
		}
	}
	d.timers = nil
	d.pending = nil
	d.mu.Unlock()

	// Emit outside the lock: the callback reads the store and must not
	// re-enter the debouncer under its mutex.
	for _, ev := range toEmit {
		d.emit(ev)
	}
}
