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

import "sync"

// blockingWaker parks the calling goroutine on a condition variable and wakes it on Wake. It is a
// minimal signal/park mechanism, used here to let a single future be driven to completion outside
// of any scheduler.
type blockingWaker struct {
	mu        sync.Mutex
	cond      *sync.Cond
	signalled bool
}

func newBlockingWaker() *blockingWaker {
	w := &blockingWaker{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Wake implements Waker.
func (w *blockingWaker) Wake() error {
	w.mu.Lock()
	w.signalled = true
	w.cond.Signal()
	w.mu.Unlock()
	return nil
}

// park blocks until Wake has been called at least once since the last park, then clears the
// flag.
func (w *blockingWaker) park() {
	w.mu.Lock()
	for !w.signalled {
		w.cond.Wait()
	}
	w.signalled = false
	w.mu.Unlock()
}

// BlockOn drives f to completion on the calling goroutine, parking it between polls instead of
// busy-looping. It exists for tests and small synchronous call sites; production code should
// submit to an Executor instead, since BlockOn defeats the purpose of a poll-based runtime by
// tying up a whole OS-level goroutine for the duration of the wait.
func BlockOn(f Future) (interface{}, error) {
	waker := newBlockingWaker()
	ctx := &Context{Waker: waker}

	// The first poll always happens immediately; later ones wait for a wakeup.
	for {
		result, err := f.Poll(ctx)
		if err != nil {
			return nil, err
		}
		if result != PollResultPending {
			return result, nil
		}
		waker.park()
	}
}
