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

// Package scheduler implements the single-owner dispatch loop: a Task wraps a submitted Future in
// a reusable slot, and a Scheduler (Local or Shared) owns the set of live tasks plus the ready
// queue that drives them.
package scheduler

import (
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/future"
)

// taskState enumerates the Task lifecycle, stored in an atomic.Int32. Every cross-goroutine
// transition goes through CompareAndSwap on this one word, which is what lets signal() and poll()
// race without losing a wakeup.
type taskState int32

const (
	taskStateFresh taskState = iota
	taskStateReady
	taskStateRunning
	taskStateParked
	taskStateCompleted
	taskStateReleased
)

// schedulerHandle is the subset of Scheduler a Task needs: re-enqueue itself and poke the
// scheduler's own waker. Both LocalScheduler and SharedScheduler implement it.
type schedulerHandle interface {
	enqueueReady(t *Task)
	signal()
}

// Task is the reusable container bound to a Scheduler. It owns the submitted future, a
// back-reference to its scheduler, and an embedded Waker that -- when signalled -- re-enqueues
// the task on the scheduler's ready queue.
type Task struct {
	future    future.Future
	scheduler schedulerHandle

	state atomic.Int32 // taskState

	// next links the task into the scheduler's free list while it is cached. Live tasks are not
	// linked into any list: the scheduler keeps only a count of them.
	next *Task
}

// taskWaker is the Waker handed to a Task's future on every poll. It performs the
// "parked -> ready" transition of the Task state machine.
type taskWaker struct {
	task *Task
}

// Wake implements future.Waker.
func (w taskWaker) Wake() error {
	w.task.signal()
	return nil
}

// signal is called (from any goroutine) to mark the task runnable again. If the task is
// currently parked, it is moved straight to the ready queue and the scheduler is poked. If the
// task is currently running, its state is advanced to Ready so poll's own Running->Parked
// compare-and-swap fails and the run loop re-enqueues the task itself -- both sides racing
// through CAS on the same word means a signal arriving mid-poll can never be lost to a stale
// flag read. Signals that arrive while the task is already ready/completed/released coalesce
// into a no-op, matching the Waker contract's "signals are coalesced" invariant.
func (t *Task) signal() {
	for {
		state := taskState(t.state.Load())
		switch state {
		case taskStateParked:
			if t.state.CompareAndSwap(int32(state), int32(taskStateReady)) {
				t.scheduler.enqueueReady(t)
				t.scheduler.signal()
				return
			}
		case taskStateRunning:
			// The run loop requeues a Ready task synchronously after poll returns, so there is no
			// enqueue (and no scheduler poke) to do here.
			if t.state.CompareAndSwap(int32(state), int32(taskStateReady)) {
				return
			}
		case taskStateFresh, taskStateReady, taskStateCompleted, taskStateReleased:
			// Already queued, not yet dispatched, or done: nothing to do.
			return
		}
	}
}

// poll drives the task's future exactly once. It must only be called by the scheduler's owning
// goroutine. Returns true if the future completed (result, err valid) and the task transitioned
// to Completed.
func (t *Task) poll() (result future.PollResult, err error, completed bool) {
	t.state.Store(int32(taskStateRunning))

	ctx := &future.Context{Waker: taskWaker{task: t}}
	result, err = t.future.Poll(ctx)

	if err != nil || result != future.PollResultPending {
		t.state.Store(int32(taskStateCompleted))
		return result, err, true
	}

	// Pending: park, unless a concurrent signal() already advanced Running->Ready underneath us.
	// A failed CAS leaves the task in Ready and the caller (the scheduler's run loop) re-enqueues
	// it immediately instead of parking it -- the wakeup that raced the poll is preserved.
	t.state.CompareAndSwap(int32(taskStateRunning), int32(taskStateParked))
	return future.PollResultPending, nil, false
}

// needsRequeue reports whether poll() left the task in the Ready state (a signal raced the poll)
// so the scheduler's run loop knows to push it back onto the ready queue itself.
func (t *Task) needsRequeue() bool {
	return taskState(t.state.Load()) == taskStateReady
}

// release returns the task to Released, its terminal state. A released task must never be
// polled again.
func (t *Task) release() {
	t.state.Store(int32(taskStateReleased))
	t.future = nil
}

// reset reinitialises a cached (Released) task slot with a fresh future, so a completed task's
// allocation can be reused by a later submit without a new allocation: completed tasks are not
// freed but moved to a cache.
func (t *Task) reset(f future.Future, sched schedulerHandle) {
	t.future = f
	t.scheduler = sched
	t.next = nil
	t.state.Store(int32(taskStateReady))
}
