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

// Package queue provides the lock-free/low-lock building blocks shared by the scheduler's ready
// queue and the channel engine's buffers: bounded ring buffers for each producer/consumer
// cardinality, an unbounded linked queue, and the small lock/backoff helpers used to guard the
// few fields that aren't worth making lock-free.
package queue

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Backoff implements the exponential retry/backoff helper used by the bounded MPSC/MPMC ring
// buffers' compare-and-swap loops. It starts by spinning (cheap, keeps the cache line hot) and
// degrades to runtime.Gosched once spinning stops paying off.
type Backoff struct {
	step uint32
}

// maxSpins bounds how many pure-spin iterations Backoff performs before yielding the processor.
const maxSpins = 6

// Spin performs one unit of backoff. Call it in a loop each time a CAS attempt fails.
func (b *Backoff) Spin() {
	if b.step < maxSpins {
		n := 1 << b.step
		for i := 0; i < n; i++ {
			procYield()
		}
	} else {
		runtime.Gosched()
	}
	b.step++
}

// Reset clears the backoff state; call it after a successful CAS so the next failure starts
// from the cheapest spin again.
func (b *Backoff) Reset() {
	b.step = 0
}

// procYield is one pure-spin step: it returns without descheduling the goroutine. It is a
// separate, non-inlined function so that profiling tools can tell spin-wait time apart from the
// Gosched-induced descheduling phase.
//
//go:noinline
func procYield() {}

// SpinLock is an exclusive lock that busy-waits instead of descheduling the goroutine. It is
// appropriate only for critical sections bounded to a handful of instructions, such as
// SerialQueueExecutor's one-shot stop transition. Locks of this kind are never held across a poll.
type SpinLock struct {
	state int32
}

const (
	spinUnlocked int32 = 0
	spinLocked   int32 = 1
)

// Lock acquires the spin lock.
func (l *SpinLock) Lock() {
	var b Backoff
	for !atomic.CompareAndSwapInt32(&l.state, spinUnlocked, spinLocked) {
		b.Spin()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *SpinLock) TryLock() bool {
	return atomic.CompareAndSwapInt32(&l.state, spinUnlocked, spinLocked)
}

// Unlock releases the spin lock. Unlock of an unlocked SpinLock is a programmer error, as with
// sync.Mutex.
func (l *SpinLock) Unlock() {
	atomic.StoreInt32(&l.state, spinUnlocked)
}

// UnfairLock wraps sync.Mutex under an explicit "unfair lock" name; nothing in this module uses
// it (SharedScheduler guards its free list and count with a plain sync.Mutex). Go's sync.Mutex
// is itself unfair under contention (no FIFO
// wakeup guarantee), so this is a documentation-level alias rather than a reimplementation.
type UnfairLock struct {
	mu sync.Mutex
}

// Lock acquires the lock.
func (l *UnfairLock) Lock() { l.mu.Lock() }

// Unlock releases the lock.
func (l *UnfairLock) Unlock() { l.mu.Unlock() }

// TryLock attempts to acquire the lock without blocking.
func (l *UnfairLock) TryLock() bool { return l.mu.TryLock() }
