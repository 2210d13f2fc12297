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

package concurrent

import (
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/queue"
	"github.com/botobag/asyncrt/concurrent/scheduler"
)

// ThreadExecutor binds a LocalScheduler to the calling goroutine: Run blocks that goroutine,
// parking on the scheduler's internal wake channel whenever no task is ready. An optional
// Capacity bounds the number of in-flight tasks, surfacing ErrAtCapacity from TrySubmit instead
// of growing without bound.
type ThreadExecutor struct {
	sched *scheduler.LocalScheduler

	// capacity is the maximum number of tasks in flight at once; 0 means unbounded.
	capacity int32
	inFlight atomic.Int32
}

// NewThreadExecutor creates a ThreadExecutor with an optional capacity bound (0 for unbounded).
func NewThreadExecutor(capacity int) *ThreadExecutor {
	return &ThreadExecutor{
		sched:    scheduler.NewLocalScheduler(),
		capacity: int32(capacity),
	}
}

// capacityTrackedFuture wraps a submitted future to release its capacity slot on completion.
type capacityTrackedFuture struct {
	inner future.Future
	done  func()
}

func (f *capacityTrackedFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	result, err := f.inner.Poll(ctx)
	if err != nil || result != future.PollResultPending {
		f.done()
	}
	return result, err
}

// TrySubmit implements Executor.
func (e *ThreadExecutor) TrySubmit(f future.Future) error {
	if e.capacity > 0 {
		for {
			n := e.inFlight.Load()
			if n >= e.capacity {
				return ErrAtCapacity
			}
			if e.inFlight.CompareAndSwap(n, n+1) {
				break
			}
		}
		f = &capacityTrackedFuture{inner: f, done: func() { e.inFlight.Add(-1) }}
	}

	if err := e.sched.Submit(f); err != nil {
		if e.capacity > 0 {
			e.inFlight.Add(-1)
		}
		return ErrShutdown
	}
	return nil
}

// Run implements Executor: blocks the calling goroutine, dispatching ready tasks, parking on the
// scheduler's wake channel when idle, until Shutdown is called and the scheduler drains.
func (e *ThreadExecutor) Run() {
	e.sched.Run()
}

// completionFuture wraps until so RunUntil learns its result through the normal task-completion
// path instead of polling it on a side channel.
type completionFuture struct {
	inner future.Future
	done  chan struct {
		value interface{}
		err   error
	}
}

func (f *completionFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	value, err := f.inner.Poll(ctx)
	if err == nil && value == future.PollResultPending {
		return future.PollResultPending, nil
	}
	f.done <- struct {
		value interface{}
		err   error
	}{value, err}
	return value, err
}

// RunUntil drives the executor only until the given future resolves, then shuts the executor
// down and returns the future's result. The until future is submitted like any other task, so it
// is driven by the same poll loop rather than a separate busy-poll.
func (e *ThreadExecutor) RunUntil(until future.Future) (interface{}, error) {
	wrapped := &completionFuture{
		inner: until,
		done: make(chan struct {
			value interface{}
			err   error
		}, 1),
	}
	if err := e.sched.Submit(wrapped); err != nil {
		return nil, err
	}

	go e.sched.Run()
	r := <-wrapped.done
	e.Shutdown()
	return r.value, r.err
}

// Wait implements Executor: blocks until the scheduler has no pending or in-flight tasks,
// backing off the same way the bounded ring buffers do while spinning on a busy condition --
// reusing the Backoff helper rather than inventing a second spin policy.
func (e *ThreadExecutor) Wait() {
	var b queue.Backoff
	for !e.sched.Idle() {
		b.Spin()
	}
}

// Shutdown implements Executor.
func (e *ThreadExecutor) Shutdown() {
	e.sched.Close()
}

var _ Executor = (*ThreadExecutor)(nil)
