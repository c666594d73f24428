/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package heartbeat arms a per-context timer after every completed
// non-heartbeat transaction and fires a heartbeat transaction on expiry
// iff the context is idle (spec.md 4.8). It is a thin periodic-tick
// collaborator in the same spirit as the teacher's cluster/async.go
// callback plumbing, scaled down to one timer per context instead of one
// per cluster command.
package heartbeat

import (
	"sync"
	"time"
)

// Starter begins a heartbeat transaction on the context that owns this
// Thumper. It returns false if a transaction is already in flight, in
// which case the Thumper silently drops this tick (spec.md 4.8 / 9: a
// user transaction preempting a pending heartbeat is dropped, not
// queued).
type Starter func() bool

// Thumper arms and disarms the recurring heartbeat timer for one context.
// It is not safe for concurrent use from multiple goroutines calling
// Arm/Disable simultaneously without external synchronization beyond its
// own mutex protecting the timer handle — callers are expected to drive
// it from the single scheduler worker goroutine, same as internal/sched.
type Thumper struct {
	period time.Duration
	start  Starter

	mu      sync.Mutex
	timer   *time.Timer
	enabled bool
}

// New creates a Thumper that fires start every period, starting disarmed.
// A period <= 0 disables auto-heartbeat entirely (Arm becomes a no-op),
// matching the original's "heartbeat interval 0 means off" convention.
func New(period time.Duration, start Starter) *Thumper {
	return &Thumper{period: period, start: start}
}

// Arm (re)starts the countdown to the next heartbeat tick, called after
// every completed non-heartbeat transaction per spec.md 4.8. Calling Arm
// while already armed replaces the pending timer, so a burst of
// transactions keeps pushing the heartbeat out rather than piling up
// extra fires.
func (t *Thumper) Arm() {
	if t.period <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.enabled = true
	t.timer = time.AfterFunc(t.period, t.fire)
}

// Disable cancels any pending heartbeat and prevents further arming until
// Arm is called again; used when the context is freed or unsubscribed
// from every channel.
func (t *Thumper) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Thumper) fire() {
	t.mu.Lock()
	armed := t.enabled
	t.mu.Unlock()

	if !armed {
		return
	}

	if !t.start() {
		// A user transaction is in flight; drop this tick rather than
		// queue it (spec.md 9's documented Open Question decision).
		return
	}
}
