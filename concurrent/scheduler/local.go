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
	"errors"
	"sync"
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/future"
)

// ErrSchedulerClosed is returned by Submit once a scheduler has entered (or finished) its close
// sequence.
var ErrSchedulerClosed = errors.New("scheduler: closed")

// localState packs the three-state close handshake into a single word so Close and a concurrent
// Wake (arriving from another goroutine's signal) never interleave into an inconsistent view.
type localState int32

const (
	// localOpen: accepting Submit calls, Run loop idle or executing.
	localOpen localState = iota
	// localClosing: Close has been requested; the run loop drains remaining ready tasks then
	// transitions to localClosed. Submit is rejected.
	localClosing
	// localClosed: terminal. Run returns immediately.
	localClosed
)

// LocalScheduler is a single-threaded scheduler: exactly one goroutine may call Run (or RunOnce)
// at a time. Tasks may be submitted, and wakers may be signalled, from any goroutine; the ready
// queue itself is a mutex-protected slice since only the owning goroutine ever pops from it and
// contention is limited to pushes from waker callbacks.
type LocalScheduler struct {
	state atomic.Int32 // localState

	mu    sync.Mutex
	ready []*Task // FIFO ready queue; simple slice since LocalScheduler is not perf-critical on push
	free  *Task   // free list of released, reusable Task slots

	// wake is signalled whenever a task becomes ready so a blocked Run can resume; buffered so a
	// signal arriving just before Run parks is not lost.
	wake chan struct{}

	live int // count of tasks neither completed nor released, for Idle()

	observer Observer
}

// NewLocalScheduler creates a scheduler ready to accept Submit calls.
func NewLocalScheduler() *LocalScheduler {
	return &LocalScheduler{
		wake:     make(chan struct{}, 1),
		observer: defaultObserver,
	}
}

// SetObserver installs o to receive enqueue/completion/close notifications, replacing any
// previously installed observer. Not safe to call concurrently with Submit/Run.
func (s *LocalScheduler) SetObserver(o Observer) {
	if o == nil {
		o = defaultObserver
	}
	s.observer = o
}

// Submit binds f to a (possibly recycled) Task and enqueues it for its first poll. It returns
// ErrSchedulerClosed once Close has been called.
func (s *LocalScheduler) Submit(f future.Future) error {
	s.mu.Lock()
	if localState(s.state.Load()) != localOpen {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}

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
	s.ready = append(s.ready, t)
	s.mu.Unlock()

	s.observer.OnTaskEnqueued()
	s.signal()
	return nil
}

// enqueueReady implements schedulerHandle: appends a task made ready by a waker signal.
func (s *LocalScheduler) enqueueReady(t *Task) {
	s.mu.Lock()
	s.ready = append(s.ready, t)
	s.mu.Unlock()
}

// signal implements schedulerHandle: wakes a blocked Run loop. Non-blocking: a full channel
// already means a wakeup is pending.
func (s *LocalScheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// popReady pops the next ready task, if any.
func (s *LocalScheduler) popReady() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		return nil
	}
	t := s.ready[0]
	s.ready = s.ready[1:]
	return t
}

// reclaim moves a completed task onto the free list and decrements the live count.
func (s *LocalScheduler) reclaim(t *Task) {
	s.mu.Lock()
	s.live--
	t.release()
	t.next = s.free
	s.free = t
	s.mu.Unlock()
	s.observer.OnTaskCompleted()
}

// RunOnce drains the current ready queue, polling each task once. It returns the number of
// tasks polled. Tasks that complete are reclaimed; tasks whose waker fired during their own poll
// are pushed back onto the ready queue, so a task can never be silently dropped between "poll
// returned pending" and "waker fired before the task was requeued".
func (s *LocalScheduler) RunOnce() int {
	polled := 0
	for {
		t := s.popReady()
		if t == nil {
			return polled
		}
		s.drive(t)
		polled++
	}
}

// drive polls t once. If the poll completed, the task is reclaimed; if a signal (including a
// context.Yield call) arrived during the poll, the task goes back onto the end of the ready
// queue rather than being redriven immediately, so a task that yields repeatedly cannot starve
// the tasks behind it -- FIFO order is preserved across yields.
func (s *LocalScheduler) drive(t *Task) {
	_, _, completed := t.poll()
	if completed {
		s.reclaim(t)
		return
	}
	if t.needsRequeue() {
		s.enqueueReady(t)
	}
}

// Run blocks, dispatching ready tasks, until Close is called and the ready queue is empty.
func (s *LocalScheduler) Run() {
	for {
		if s.RunOnce() == 0 {
			if localState(s.state.Load()) != localOpen {
				s.mu.Lock()
				empty := len(s.ready) == 0
				s.mu.Unlock()
				if empty {
					s.state.Store(int32(localClosed))
					return
				}
				continue
			}
			<-s.wake
		}
	}
}

// Close requests the scheduler to stop accepting new Submit calls and, once the ready queue
// drains, to return from Run. Close is idempotent.
func (s *LocalScheduler) Close() {
	if s.state.CompareAndSwap(int32(localOpen), int32(localClosing)) {
		s.observer.OnClosed()
	}
	s.signal()
}

// Idle reports whether there are no pending or in-flight tasks.
func (s *LocalScheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live == 0
}

// Len reports the number of tasks currently in the ready queue, for external sampling (e.g. a
// periodically-polled gauge) rather than a per-poll counter.
func (s *LocalScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready)
}
