// Package debounce coalesces bursts of text input into a single value
// emitted once the input has been quiet for a fixed window.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence window of the search box.
const DefaultWindow = 300 * time.Millisecond

// Debouncer delays values pushed to it. Each Push restarts the window and
// drops the pending value; only the last value of a quiet period is emitted.
// It delays triggering only and never cancels work the emit callback started.
type Debouncer struct {
	window time.Duration
	emit   func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	armed   bool
	seq     uint64
	stopped bool
}

// New returns a Debouncer that calls emit on its own goroutine. A window
// <= 0 uses DefaultWindow.
func New(window time.Duration, emit func(string)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, emit: emit}
}

// Window returns the quiescence window.
func (d *Debouncer) Window() time.Duration { return d.window }

// Push records v and restarts the window.
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = v
	d.armed = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	// a timer that already fired but lost the race for mu sees a newer seq and drops out
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || !d.armed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.mu.Unlock()

	d.emit(v)
}

// Flush emits the pending value now, if there is one, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.armed {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	v := d.pending
	d.armed = false
	d.mu.Unlock()

	d.emit(v)
}

// Pending reports whether a value is waiting for the window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Cancel drops the pending value, if any. Later pushes work as usual.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = false
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Stop drops any pending value; later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
