// Package debounce delays a value until its producer has been quiet for a
// while. Only the last value pushed during a burst is delivered.
package debounce

import (
	"sync"
	"time"
)

// DefaultWait is the quiet period used by the product search.
const DefaultWait = 1000 * time.Millisecond

// Debouncer holds at most one live timer. Push restarts it; a timer that was
// superseded but fires anyway is ignored.
type Debouncer[T any] struct {
	clock Clock
	wait  time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	pending T
	has     bool
}

// New returns a debouncer calling fn with the last pushed value once wait has
// elapsed without another Push. A nil clock means RealClock.
func New[T any](wait time.Duration, clock Clock, fn func(T)) *Debouncer[T] {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer[T]{clock: clock, wait: wait, fn: fn}
}

func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = v
	d.has = true

	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.has {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// Flush delivers the pending value now, if any. It reports whether a value
// was delivered.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.has {
		d.mu.Unlock()
		return false
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Stop drops the pending value without delivering it.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.take()
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.has
}

func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.has = false
	d.timer = nil
	return v
}
