// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// debouncer batches paths and hands them to fire once no new path has
// arrived for delay. fire never runs concurrently with itself.
type debouncer struct {
	delay time.Duration
	fire  func(batch []string)
	busy  func()

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
	running atomic.Bool
}

func newDebouncer(delay time.Duration, fire func([]string), busy func()) *debouncer {
	return &debouncer{
		delay:   delay,
		fire:    fire,
		busy:    busy,
		pending: make(map[string]struct{}),
	}
}

// add records path and restarts the quiet period.
func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	d.schedule()
}

// schedule must be called with mu held.
func (d *debouncer) schedule() {
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.flush)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *debouncer) flush() {
	if !d.running.CompareAndSwap(false, true) {
		if d.busy != nil {
			d.busy()
		}
		d.mu.Lock()
		if !d.stopped {
			d.schedule()
		}
		d.mu.Unlock()
		return
	}
	defer d.running.Store(false)

	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := slices.Sorted(maps.Keys(d.pending))
	clear(d.pending)
	d.mu.Unlock()

	d.fire(batch)
}

// stop cancels any scheduled flush. Pending paths are dropped.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
