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

// Package concurrent binds a scheduler to a parking mechanism -- a thread condition variable, a
// dispatch-queue-style serial queue, or a run-loop source -- behind one Executor façade, plus the
// ready-queue/channel-engine building blocks the rest of the module depends on.
package concurrent

import (
	"github.com/botobag/asyncrt/concurrent/future"
)

// ExecutorError is returned from TrySubmit when a submission cannot be accepted.
type ExecutorError int

const (
	// ErrAtCapacity indicates the executor has an optional submission limit and is presently full.
	ErrAtCapacity ExecutorError = iota
	// ErrShutdown indicates the executor has been shut down and no longer accepts submissions.
	ErrShutdown
)

// Error implements error.
func (e ExecutorError) Error() string {
	switch e {
	case ErrAtCapacity:
		return "concurrent: executor at capacity"
	case ErrShutdown:
		return "concurrent: executor shut down"
	default:
		return "concurrent: unknown executor error"
	}
}

var (
	_ error = ErrAtCapacity
	_ error = ErrShutdown
)

// schedulerAPI is the subset of scheduler.LocalScheduler / scheduler.SharedScheduler every Executor
// variant drives. Kept narrow so an Executor can be built over either without the package
// depending on which concrete type backs it.
type schedulerAPI interface {
	Submit(f future.Future) error
	RunOnce() int
	Close()
	Idle() bool
}

// Executor is the public façade combining a scheduler with a parking mechanism. Executor identity
// is identity over the underlying scheduler: two Executor values wrapping the same scheduler are
// interchangeable, but the façade itself does not implement equality -- callers comparing
// executors should compare the scheduler they were built from.
type Executor interface {
	// TrySubmit submits a future for execution, returning an ExecutorError if the executor cannot
	// accept it right now.
	TrySubmit(f future.Future) error

	// Run blocks the calling goroutine, parking and waking per the executor's mechanism, until
	// Shutdown has been called and the scheduler has drained. RunLoopExecutor.Run instead returns
	// as soon as its scheduler has no live tasks, without waiting for Shutdown.
	Run()

	// Wait blocks the calling goroutine until the scheduler has no pending or in-flight tasks.
	// Unlike Run, Wait does not itself drive polling on executors that require an external driver
	// (RunLoopExecutor); it simply waits for drainage driven by someone else's Run.
	Wait()

	// Shutdown stops accepting new submissions; already-submitted futures continue to run to
	// completion. Idempotent.
	Shutdown()
}
