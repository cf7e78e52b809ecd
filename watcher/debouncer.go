package watcher

import (
	"sort"
	"sync"
	"time"
)

// Event is a batched file system change.
type Event struct {
	Path string
	Op   Op
}

// Op is the kind of change observed on a path.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// Debouncer collapses bursts of file system events into batches. Events for
// the same path within the quiet window replace each other; a batch is
// emitted once the window elapses with no new events.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	pending  map[string]Event
	timer    *time.Timer
	output   chan []Event
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]Event),
		output:   make(chan []Event, 16),
	}
}

// Output returns the channel batches are delivered on.
func (d *Debouncer) Output() <-chan []Event {
	return d.output
}

// Add records an event and restarts the quiet window. A later event for the
// same path wins.
func (d *Debouncer) Add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = Event{Path: path, Op: op}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}

	batch := make([]Event, 0, len(d.pending))
	for _, event := range d.pending {
		batch = append(batch, event)
	}
	// Deterministic batch order keeps downstream handling reproducible.
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	d.pending = make(map[string]Event)
	d.output <- batch
}
