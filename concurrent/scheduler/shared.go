/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/queue"
)

// SharedScheduler is a scheduler whose Submit and waker signals may be called from any number
// of goroutines concurrently, but whose Run (the dispatch loop that actually polls futures)
// still has a single owner at a time -- only the ready queue and the free-list are genuinely
// multi-writer. The ready queue is backed by queue.UnboundedMPSC; the free list and live count
// share one lock since both only change on Submit/reclaim, off the hot poll path.
type SharedScheduler struct {
	state atomic.Int32 // localState (same three-state handshake as LocalScheduler)

	readyQueue queue.UnboundedMPSC[*Task]

	mu   sync.Mutex
	free *Task
	live int

	observer Observer
}

// NewSharedScheduler creates a scheduler ready to accept concurrent Submit calls.
func NewSharedScheduler() *SharedScheduler {
	return &SharedScheduler{observer: defaultObserver}
}

// SetObserver installs o to receive enqueue/completion/close notifications, replacing any
// previously installed observer. Not safe to call concurrently with Submit/Run.
func (s *SharedScheduler) SetObserver(o Observer) {
	if o == nil {
		o = defaultObserver
	}
	s.observer = o
}

// Submit binds f to a (possibly recycled) Task and enqueues it for its first poll.
// Safe to call from any goroutine.
func (s *SharedScheduler) Submit(f future.Future) error {
	if localState(s.state.Load()) != localOpen {
		return ErrSchedulerClosed
	}

	s.mu.Lock()
	var t *Task
	if s.free != nil {
		t = s.free
		s.free = t.next
		t.reset(f, s)
	} else {
		t = &Task{future: f, scheduler: s}
		t.state.Store(int32(taskStateReady))
	}
	s.live++
	s.mu.Unlock()

	if !s.readyQueue.Push(t) {
		// The queue was closed concurrently with our state check losing the race; treat as
		// rejected submission rather than silently dropping the task.
		s.mu.Lock()
		s.live--
		t.release()
		t.next = s.free
		s.free = t
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.observer.OnTaskEnqueued()
	return nil
}

// enqueueReady implements schedulerHandle.
func (s *SharedScheduler) enqueueReady(t *Task) {
	s.readyQueue.Push(t)
}

// signal implements schedulerHandle. SharedScheduler's ready queue already wakes a blocked
// consumer (queue.UnboundedMPSC.Pop uses a sync.Cond), so there is nothing extra to poke.
func (s *SharedScheduler) signal() {}

// reclaim moves a completed task onto the free list.
func (s *SharedScheduler) reclaim(t *Task) {
	s.mu.Lock()
	s.live--
	t.release()
	t.next = s.free
	s.free = t
	s.mu.Unlock()
	s.observer.OnTaskCompleted()
}

// drive polls t once, the same round-robin-preserving handoff LocalScheduler.drive uses: a
// signal that arrives mid-poll sends the task back onto the ready queue instead of being
// redriven in place.
func (s *SharedScheduler) drive(t *Task) {
	_, _, completed := t.poll()
	if completed {
		s.reclaim(t)
		return
	}
	if t.needsRequeue() {
		s.enqueueReady(t)
	}
}

// RunOnce drains whatever is currently in the ready queue without blocking, polling each task
// once (requeueing any task whose waker fired mid-poll, the same as LocalScheduler.RunOnce).
// It returns the number of tasks polled. Useful for callers -- such as SerialQueueExecutor's
// worker goroutine -- that want to drain a batch and then decide for themselves whether to wait
// for more work rather than blocking inside the scheduler.
func (s *SharedScheduler) RunOnce() int {
	polled := 0
	for {
		t, ok := s.readyQueue.TryPop()
		if !ok {
			return polled
		}
		s.drive(t)
		polled++
	}
}

// Run blocks, polling tasks as they become ready, until Close is called and the ready queue is
// drained. Like RunOnce, it is the single consumer of the ready queue: one goroutine at a time
// may call Run.
func (s *SharedScheduler) Run() {
	for {
		t, ok := s.readyQueue.Pop()
		if !ok {
			// Queue closed and drained.
			return
		}
		s.drive(t)
	}
}

// Close stops accepting Submit calls and closes the ready queue once called; any Run loop
// blocked in Pop wakes with ok=false and returns. Close is idempotent.
func (s *SharedScheduler) Close() {
	if s.state.CompareAndSwap(int32(localOpen), int32(localClosing)) {
		s.readyQueue.Close()
		s.state.Store(int32(localClosed))
		s.observer.OnClosed()
	}
}

// Idle reports whether there are no pending or in-flight tasks.
func (s *SharedScheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live == 0
}

// Len reports the number of tasks currently submitted and not yet completed, pending or
// in-flight. Unlike LocalScheduler.Len this does not reflect only the ready queue, since
// UnboundedMPSC exposes no cheap length check; live count is the nearest equivalent for sampling
// into a depth gauge.
func (s *SharedScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}
