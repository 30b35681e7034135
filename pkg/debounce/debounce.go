// Package debounce provides a cancellable delayed task: repeated triggers
// inside the quiet period coalesce into a single execution.
package debounce

import (
	"sync"
	"time"
)

// Debouncer schedules fn to run once a quiet period has elapsed since the
// last Trigger. Flush and the timer callback are mutually exclusive, so at
// most one execution is in flight at a time.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New constructs a debouncer around fn.
func New(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = time.Second
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period. Any pending execution is superseded.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush cancels any pending timer and runs fn immediately and synchronously.
// It is a no-op when nothing is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()

	fn()
}

// Stop cancels any pending execution without running it. The debouncer is
// unusable afterwards; a page navigating away simply lets the task die.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether an execution is currently scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()

	fn()
}
