package watcher

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
)

// DefaultDebounceWindow is the quiet period before a batch of events is delivered.
const DefaultDebounceWindow = 100 * time.Millisecond

// Debouncer coalesces bursts of watch events into one batch.
// A path reported several times within a window keeps its latest operation.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[domain.InternedString]ports.WatchOp
	timer    *time.Timer
	window   time.Duration
	callback func(events []ports.WatchEvent)
}

// NewDebouncer creates a Debouncer that delivers batches to callback.
func NewDebouncer(window time.Duration, callback func(events []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[domain.InternedString]ports.WatchOp),
		window:   window,
		callback: callback,
	}
}

// Add records event and restarts the quiet period.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[domain.NewInternedString(event.Path)] = event.Operation

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	batch := d.takeLocked()
	d.mu.Unlock()

	if len(batch) > 0 && d.callback != nil {
		go d.callback(batch)
	}
}

// Flush delivers the pending batch now and waits for the callback to return.
// It does nothing if the timer already fired.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	batch := d.takeLocked()
	d.mu.Unlock()

	if len(batch) > 0 && d.callback != nil {
		d.callback(batch)
	}
}

// takeLocked empties the pending set and returns it ordered by path.
func (d *Debouncer) takeLocked() []ports.WatchEvent {
	if len(d.pending) == 0 {
		return nil
	}

	batch := make([]ports.WatchEvent, 0, len(d.pending))
	for path, op := range d.pending {
		batch = append(batch, ports.WatchEvent{Path: path.String(), Operation: op})
	}
	d.pending = make(map[domain.InternedString]ports.WatchOp)

	slices.SortFunc(batch, func(a, b ports.WatchEvent) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return batch
}
