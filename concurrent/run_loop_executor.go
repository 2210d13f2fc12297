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

// RunLoopExecutor models a "run-loop executor": a source attached to some external run loop (a
// platform event loop, or -- since this module has no platform loop of its own -- a
// caller-driven one) that the loop drains by calling RunOnce whenever the source's signal fires.
// The source must deduplicate concurrent signals down to a single pending wakeup: a waker firing
// three times before the loop gets around to draining must still only cause one RunOnce call's
// worth of work to be scheduled, not three redundant ones.
type RunLoopExecutor struct {
	sched *scheduler.LocalScheduler

	// signalled is the single-signal flag: set by Signal, cleared by the handler (RunOnce) on
	// entry, so concurrent signals coalesce into one pending wakeup.
	signalled atomic.Bool
}

// NewRunLoopExecutor creates a RunLoopExecutor attached to a fresh scheduler.
func NewRunLoopExecutor() *RunLoopExecutor {
	return &RunLoopExecutor{}
}

// ensureScheduler lazily constructs the backing scheduler so a zero-value RunLoopExecutor is
// still usable without requiring NewRunLoopExecutor.
func (e *RunLoopExecutor) ensureScheduler() *scheduler.LocalScheduler {
	if e.sched == nil {
		e.sched = scheduler.NewLocalScheduler()
	}
	return e.sched
}

// TrySubmit implements Executor.
func (e *RunLoopExecutor) TrySubmit(f future.Future) error {
	if err := e.ensureScheduler().Submit(&runLoopSignallingFuture{inner: f, executor: e}); err != nil {
		return ErrShutdown
	}
	e.Signal()
	return nil
}

// runLoopSignallingFuture re-raises the run-loop source's signal whenever the wrapped future's
// waker fires, so a task parked mid-poll still gets drained on the next iteration the external
// loop drives.
type runLoopSignallingFuture struct {
	inner    future.Future
	executor *RunLoopExecutor
}

func (f *runLoopSignallingFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	innerCtx := &future.Context{Waker: runLoopWaker{executor: f.executor, inner: ctx.Waker}}
	return f.inner.Poll(innerCtx)
}

type runLoopWaker struct {
	executor *RunLoopExecutor
	inner    future.Waker
}

func (w runLoopWaker) Wake() error {
	w.executor.Signal()
	return w.inner.Wake()
}

// Signal marks the run-loop source as having fired. Idempotent while a signal is already
// pending, which is exactly the deduplication the source must provide.
func (e *RunLoopExecutor) Signal() {
	e.signalled.Store(true)
}

// RunOnce is the handler an external run loop invokes when this executor's source fires. It
// clears the pending-signal flag on entry (so a Signal arriving during the drain below schedules
// exactly one more RunOnce, never zero) and drains the ready queue once.
func (e *RunLoopExecutor) RunOnce() int {
	e.signalled.Store(false)
	return e.ensureScheduler().RunOnce()
}

// Pending reports whether a signal is outstanding for the external loop to act on.
func (e *RunLoopExecutor) Pending() bool {
	return e.signalled.Load()
}

// Run implements Executor by acting as its own trivial external loop: block for a pending signal,
// drain, repeat, until no signal is pending and the scheduler has no live tasks; it returns then
// whether or not Shutdown has been called. Real platform
// integrations call RunOnce directly from their own loop instead of using this method.
func (e *RunLoopExecutor) Run() {
	var b queue.Backoff
	for {
		if e.Pending() {
			e.RunOnce()
			b.Reset()
			continue
		}
		if e.ensureScheduler().Idle() {
			return
		}
		b.Spin()
	}
}

// Wait implements Executor.
func (e *RunLoopExecutor) Wait() {
	var b queue.Backoff
	for !e.ensureScheduler().Idle() {
		b.Spin()
	}
}

// Shutdown implements Executor.
func (e *RunLoopExecutor) Shutdown() {
	e.ensureScheduler().Close()
	e.Signal()
}

var _ Executor = (*RunLoopExecutor)(nil)
