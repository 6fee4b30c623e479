// Package debounce delays work behind named timers so that a burst of calls
// with the same name runs the work once, after the burst goes quiet.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds one timer per name.
type Debouncer struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// New creates an empty debouncer.
func New() *Debouncer {
	return &Debouncer{timers: make(map[string]*time.Timer)}
}

// Do schedules fn to run after delay. A pending call under the same name is
// cancelled and replaced.
func (d *Debouncer) Do(name string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[name]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.timers[name] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, name)
		d.mu.Unlock()
		fn()
	})
	d.timers[name] = t
}

// Pending returns the number of scheduled calls.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending call. Later calls to Do are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for name, t := range d.timers {
		t.Stop()
		delete(d.timers, name)
	}
}
