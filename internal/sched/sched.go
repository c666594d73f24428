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

// Package sched is the single background worker that drives every
// registered context's FSM (spec.md 4.3). One goroutine owns the loop;
// everything else — a context invoking an operation, a blocking I/O step
// reporting completion, a timer expiring — is funneled to it through a
// channel so the "run exactly one fsm(ctx) at a time" discipline the
// original enforces with a mutex falls out of Go's single-goroutine
// ownership instead.
//
// The four-step loop (process queue, poll watched sockets, advance the
// timer list, repeat) is re-expressed as a select over three channels
// plus a ticker standing in for poll's ~100ms timeout, the same
// redesign rationale documented in internal/pal.
package sched

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nabbar/pncore/internal/fsm"
	"github.com/nabbar/pncore/internal/timerlist"
	"golang.org/x/sync/semaphore"
)

// pollInterval stands in for the original's poll() timeout; it bounds
// how late a ready socket or expired timer can be noticed.
const pollInterval = 100 * time.Millisecond

// queueCapacity is the processing queue's ring-buffer size (spec.md 5):
// overflow returns ErrQueueFull to the poster rather than blocking it.
const queueCapacity = 1024

// ErrQueueFull is returned by Handle.Post when the processing queue is
// saturated; the caller may retry the post.
var ErrQueueFull = errors.New("sched: queue full")

// Handle is what a registered context uses to talk to the scheduler: feed
// it Events and get back Step results without touching the worker loop
// directly.
type Handle struct {
	owner *FSMOwner
	sched *Scheduler
}

// FSMOwner pairs an FSM with the callback invoked once the worker has
// produced a terminal state; the scheduler tracks its pending timer node
// separately in Scheduler.nodeOf. Only the scheduler goroutine touches
// Machine directly, preserving the single-owner invariant spec.md 4.3
// requires.
type FSMOwner struct {
	Machine *fsm.FSM
	OnDone  func(fsm.State)

	// terminated is set once OnDone has fired for this owner. Cancel and a
	// transaction's own event posts race on separate channels (the queue
	// and cancel channels) with no ordering guarantee between them — e.g.
	// spec.md 8's "cancel during connect" scenario, where runTransaction's
	// handle.Cancel() and drive's EventConnectFailed (posted when pal.Dial
	// unblocks on the same cancelled ctx) can both reach the worker for an
	// FSM that already finished on the other one. Only the single
	// scheduler goroutine reads/writes this field, so it needs no lock of
	// its own.
	terminated bool
}

type queueItem struct {
	owner *FSMOwner
	event fsm.Event
}

// Scheduler is the worker and its three inboxes: the processing queue
// (events ready to be stepped), arm (new/renewed deadlines), and cancel
// (context teardown). A bounded semaphore caps how many blocking-step
// goroutines (DNS, connect, TLS, read, write) may be in flight across all
// contexts at once, mirroring the original's fixed-size poll set without
// requiring Go to expose raw fd readiness.
type Scheduler struct {
	queue  chan queueItem
	arm    chan armRequest
	cancel chan *FSMOwner
	done   chan struct{}

	sem *semaphore.Weighted

	mu     sync.Mutex
	timers *timerlist.List
	nodeOf map[*FSMOwner]*timerlist.Node

	metrics *Metrics
}

type armRequest struct {
	owner     *FSMOwner
	timeoutMs int
}

// New creates a Scheduler with maxInFlight concurrent blocking steps
// permitted (0 means unlimited, a WaitGroup-style semaphore per the
// teacher's sem.New(ctx, n) convention for n<=0).
func New(maxInFlight int) *Scheduler {
	var sem *semaphore.Weighted
	if maxInFlight > 0 {
		sem = semaphore.NewWeighted(int64(maxInFlight))
	}
	return &Scheduler{
		queue:  make(chan queueItem, queueCapacity),
		arm:    make(chan armRequest, 256),
		cancel: make(chan *FSMOwner, 256),
		done:   make(chan struct{}),
		sem:    sem,
		timers: &timerlist.List{},
		nodeOf: make(map[*FSMOwner]*timerlist.Node),
	}
}

// Register wraps an FSM with its done-callback and returns the Handle
// callers use to drive it. The scheduler must already be running.
func (s *Scheduler) Register(m *fsm.FSM, onDone func(fsm.State)) *Handle {
	return &Handle{owner: &FSMOwner{Machine: m, OnDone: onDone}, sched: s}
}

// Post enqueues ev to be applied to h's FSM on the worker goroutine. It
// never blocks: if the queue is at capacity it returns ErrQueueFull
// immediately instead of stalling the calling goroutine, so the caller can
// decide whether to retry (spec.md 5's "overflow returns an error to the
// caller who may retry").
func (h *Handle) Post(ev fsm.Event) error {
	select {
	case h.sched.queue <- queueItem{owner: h.owner, event: ev}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Arm (re)schedules h's timeout timeoutMs from now, replacing any
// previous deadline for this context — used on EventStart and whenever a
// state transition resets the per-transaction clock.
func (h *Handle) Arm(timeoutMs int) {
	h.sched.arm <- armRequest{owner: h.owner, timeoutMs: timeoutMs}
}

// Cancel requests WaitCancel/CANCELLED for h's transaction.
func (h *Handle) Cancel() {
	h.sched.cancel <- h.owner
}

// Acquire blocks until a blocking-step slot is available (a no-op when
// the scheduler was built with maxInFlight == 0), and Release frees it.
// Callers (internal/pal-driving goroutines) wrap each blocking step with
// these around a context carrying the transaction's own deadline.
func (h *Handle) Acquire(ctx context.Context) error {
	if h.sched.sem == nil {
		return nil
	}
	return h.sched.sem.Acquire(ctx, 1)
}

func (h *Handle) Release() {
	if h.sched.sem != nil {
		h.sched.sem.Release(1)
	}
}

// Run starts the worker loop and blocks until ctx is cancelled or Stop is
// called. It is meant to run on its own goroutine for the lifetime of the
// process/client.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case item := <-s.queue:
			s.step(item.owner, item.event)
		case req := <-s.arm:
			s.rearm(req.owner, req.timeoutMs)
		case owner := <-s.cancel:
			s.step(owner, fsm.Event{Kind: fsm.EventCancel})
		case now := <-ticker.C:
			elapsed := int(now.Sub(last).Milliseconds())
			last = now
			if elapsed <= 0 {
				continue
			}
			s.advance(elapsed)
		}
	}
}

// Stop ends the worker loop started by Run.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) step(owner *FSMOwner, ev fsm.Event) {
	// A terminated owner's FSM is already parked in Idle; stepping it
	// again would just stay Idle and, without this guard, fire OnDone a
	// second time for whichever of a late cancel/event pair lost the
	// race to finish the transaction first.
	if owner.terminated {
		return
	}

	result := owner.Machine.Step(ev)
	if result == fsm.Idle {
		owner.terminated = true
		s.clearTimer(owner)
		if s.metrics != nil {
			s.metrics.outcomeCtr.WithLabelValues(owner.Machine.Outcome().String()).Inc()
		}
		if owner.OnDone != nil {
			owner.OnDone(result)
		}
	}
	if s.metrics != nil {
		s.metrics.queueDepth.Set(float64(len(s.queue)))
	}
}

func (s *Scheduler) rearm(owner *FSMOwner, timeoutMs int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodeOf[owner]; ok {
		s.timers.Remove(n)
		delete(s.nodeOf, owner)
	}
	if timeoutMs <= 0 {
		return
	}
	n := &timerlist.Node{Owner: owner}
	s.timers.Add(n, timeoutMs)
	s.nodeOf[owner] = n

	if s.metrics != nil {
		s.metrics.inFlightSet.Set(float64(len(s.nodeOf)))
	}
}

func (s *Scheduler) clearTimer(owner *FSMOwner) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodeOf[owner]; ok {
		s.timers.Remove(n)
		delete(s.nodeOf, owner)
	}
	if s.metrics != nil {
		s.metrics.inFlightSet.Set(float64(len(s.nodeOf)))
	}
}

func (s *Scheduler) advance(elapsedMs int) {
	s.mu.Lock()
	expired := s.timers.Advance(elapsedMs)
	for _, n := range expired {
		delete(s.nodeOf, n.Owner.(*FSMOwner))
	}
	if s.metrics != nil {
		s.metrics.inFlightSet.Set(float64(len(s.nodeOf)))
	}
	s.mu.Unlock()

	for _, n := range expired {
		owner := n.Owner.(*FSMOwner)
		s.step(owner, fsm.Event{Kind: fsm.EventTimeout})
	}
}
