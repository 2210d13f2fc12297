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
	"context"
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/queue"
	"github.com/botobag/asyncrt/concurrent/scheduler"
	"golang.org/x/sync/semaphore"
)

// SerialQueueExecutor models a "serial-queue executor": a FIFO dispatch-queue-like abstraction
// whose waker fires an event that the queue's single worker goroutine drains by
// calling the scheduler's run loop. It additionally supports Suspend/Resume/Cancel: suspending
// acquires every unit of a counting semaphore so the worker blocks before processing its next
// event, resuming releases them.
//
// The semaphore is backed by golang.org/x/sync/semaphore.Weighted, the same counting-semaphore
// primitive the serial-dispatch model calls for -- there is no Go standard library equivalent
// that supports TryAcquire and weighted acquire/release.
type SerialQueueExecutor struct {
	sched *scheduler.SharedScheduler
	sem   *semaphore.Weighted

	event chan struct{}
	done  chan struct{}

	// closing is set by Shutdown; the worker exits (closing done) once it observes the flag with an
	// idle scheduler, so Run unblocks after a graceful drain as well as after Cancel.
	closing atomic.Bool

	stopLock queue.SpinLock // guards the one-shot close(done) transition below
	stopped  bool
}

const serialQueueSemaphoreWeight int64 = 1

// NewSerialQueueExecutor creates a SerialQueueExecutor with its worker goroutine started.
func NewSerialQueueExecutor() *SerialQueueExecutor {
	e := &SerialQueueExecutor{
		sched: scheduler.NewSharedScheduler(),
		sem:   semaphore.NewWeighted(serialQueueSemaphoreWeight),
		event: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go e.worker()
	return e
}

// worker is the queue's single draining goroutine: wait for an event (or shutdown), acquire the
// suspend/resume semaphore (a no-op unless Suspend is outstanding), drain the scheduler's ready
// tasks, release the semaphore, repeat.
func (e *SerialQueueExecutor) worker() {
	ctx := context.Background()
	for {
		select {
		case <-e.event:
		case <-e.done:
			return
		}

		if err := e.sem.Acquire(ctx, serialQueueSemaphoreWeight); err != nil {
			return
		}
		e.sched.RunOnce()
		e.sem.Release(serialQueueSemaphoreWeight)

		if e.closing.Load() && e.sched.Idle() {
			e.stop()
			return
		}
	}
}

// stop closes done exactly once, releasing Run and the worker's select.
func (e *SerialQueueExecutor) stop() {
	e.stopLock.Lock()
	defer e.stopLock.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	close(e.done)
}

// signalWorker wakes the worker goroutine, coalescing concurrent signals into a single pending
// event the same way future.AtomicWaker coalesces repeated Wake calls.
func (e *SerialQueueExecutor) signalWorker() {
	select {
	case e.event <- struct{}{}:
	default:
	}
}

// TrySubmit implements Executor.
func (e *SerialQueueExecutor) TrySubmit(f future.Future) error {
	wrapped := &serialQueueWakeupFuture{inner: f, executor: e}
	if err := e.sched.Submit(wrapped); err != nil {
		return ErrShutdown
	}
	e.signalWorker()
	return nil
}

// serialQueueWakeupFuture re-signals the worker whenever the wrapped future's own waker fires, so
// a task parked mid-poll still gets drained by the queue's worker instead of only the submitter.
type serialQueueWakeupFuture struct {
	inner    future.Future
	executor *SerialQueueExecutor
}

func (f *serialQueueWakeupFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	innerCtx := &future.Context{Waker: serialQueueWaker{executor: f.executor, inner: ctx.Waker}}
	return f.inner.Poll(innerCtx)
}

type serialQueueWaker struct {
	executor *SerialQueueExecutor
	inner    future.Waker
}

func (w serialQueueWaker) Wake() error {
	w.executor.signalWorker()
	return w.inner.Wake()
}

// Run implements Executor. SerialQueueExecutor's worker goroutine already drains the queue, so
// Run simply blocks until the executor shuts down and the worker exits -- callers that want the
// dispatch-queue model's usual "fire and forget" usage need not call Run at all.
func (e *SerialQueueExecutor) Run() {
	<-e.done
}

// Wait implements Executor.
func (e *SerialQueueExecutor) Wait() {
	var b queue.Backoff
	for !e.sched.Idle() {
		b.Spin()
	}
}

// Suspend blocks the worker goroutine before it processes its next batch of ready tasks. Each
// Suspend must be matched by a Resume; a second Suspend blocks its caller until the first is
// Resumed.
func (e *SerialQueueExecutor) Suspend() {
	e.sem.Acquire(context.Background(), serialQueueSemaphoreWeight)
}

// Resume releases a previously acquired Suspend.
func (e *SerialQueueExecutor) Resume() {
	e.sem.Release(serialQueueSemaphoreWeight)
}

// Cancel stops the worker goroutine without waiting for the scheduler to drain; already-running
// polls finish but no further events are drained. Idempotent.
func (e *SerialQueueExecutor) Cancel() {
	e.stop()
}

// Shutdown implements Executor: stops accepting submissions and, once the ready queue drains,
// stops the worker goroutine.
func (e *SerialQueueExecutor) Shutdown() {
	e.closing.Store(true)
	e.sched.Close()
	e.signalWorker()
}

var _ Executor = (*SerialQueueExecutor)(nil)
