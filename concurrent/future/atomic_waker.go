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

package future

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// atomicWakerState is a small enumeration held in an int32 that is only ever advanced through
// compare-and-swap, with one state ("notified") separated out so a concurrent Signal can be
// observed by a Register that raced it.
type atomicWakerState int32

const (
	// atomicWakerStateIdle: no register or signal in flight.
	atomicWakerStateIdle atomicWakerState = iota
	// atomicWakerStateRegistering: a Register call holds the slot.
	atomicWakerStateRegistering
	// atomicWakerStateNotified: a Signal arrived while a Register was in flight; the Register must
	// re-signal the newly stored waker once it releases the slot.
	atomicWakerStateNotified
)

// An AtomicWaker is a single-slot Waker register. It solves the classic race where a poll
// observes "no data yet", a concurrent producer then produces and signals the *old* registered
// waker, and only afterward does the poll register its new waker -- without AtomicWaker that
// wakeup is lost. Register atomically replaces any previously registered waker; the old one is
// neither signalled nor retained. Signal signals the currently registered waker (if any) and arms
// a pending-signal flag so that a Register which is concurrently in flight notices it and signals
// the newly registered waker instead of silently dropping the notification.
type AtomicWaker struct {
	state atomic.Int32
	waker unsafe.Pointer // *Waker, accessed only while state is held in Registering
}

// Register atomically replaces the registered waker with w. It must not be called concurrently
// with itself -- only one side may ever hold the registration slot; it may race freely with Signal.
func (a *AtomicWaker) Register(w Waker) {
	for {
		state := atomicWakerState(a.state.Load())
		switch state {
		case atomicWakerStateIdle, atomicWakerStateNotified:
			if a.state.CompareAndSwap(int32(state), int32(atomicWakerStateRegistering)) {
				goto registered
			}
		case atomicWakerStateRegistering:
			// Another Register is concurrently in flight, which callers must not do; don't spin forever
			// on it -- yield the CPU and retry.
			runtime.Gosched()
			continue
		}
	}

registered:
	atomic.StorePointer(&a.waker, unsafe.Pointer(&w))

	// Release the slot. If a Signal arrived while we were registering (state got bumped to
	// Notified underneath us -- impossible via CAS since we hold Registering, so instead Signal
	// leaves a note by trying to CAS Registering->Notified), pick it up and re-signal immediately.
	if !a.state.CompareAndSwap(int32(atomicWakerStateRegistering), int32(atomicWakerStateIdle)) {
		// state must be Notified: a concurrent Signal bumped it while we held the slot.
		a.state.Store(int32(atomicWakerStateIdle))
		if waiting := a.loadWaker(); waiting != nil {
			_ = waiting.Wake()
		}
	}
}

// Signal wakes the currently registered waker, if any. Multiple signals before the next Register
// collapse into a single wakeup, matching the Waker contract's "signals are coalesced" invariant.
func (a *AtomicWaker) Signal() {
	for {
		state := atomicWakerState(a.state.Load())
		switch state {
		case atomicWakerStateIdle:
			// Take the waker so later signals before the next Register coalesce into this one.
			if p := atomic.SwapPointer(&a.waker, nil); p != nil {
				_ = (*(*Waker)(p)).Wake()
			}
			return
		case atomicWakerStateNotified:
			// Already have an outstanding signal pending delivery to whichever waker ends up
			// registered next.
			return
		case atomicWakerStateRegistering:
			if a.state.CompareAndSwap(int32(state), int32(atomicWakerStateNotified)) {
				// The in-flight Register will observe Notified and re-signal after storing the new
				// waker.
				return
			}
			// Lost the race (Register completed first); reload and retry.
		}
	}
}

// Clear removes any registered waker without signalling it.
func (a *AtomicWaker) Clear() {
	for {
		state := atomicWakerState(a.state.Load())
		if state == atomicWakerStateRegistering {
			continue
		}
		if a.state.CompareAndSwap(int32(state), int32(atomicWakerStateIdle)) {
			atomic.StorePointer(&a.waker, nil)
			return
		}
	}
}

func (a *AtomicWaker) loadWaker() Waker {
	p := (*Waker)(atomic.LoadPointer(&a.waker))
	if p == nil {
		return nil
	}
	return *p
}
