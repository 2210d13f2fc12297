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

// A Context is the per-poll environment passed to every Poll/PollNext/PollReady/... call. It
// carries the Waker that the callee must arrange to be woken on, plus a cooperative Yield helper.
//
// Context is valued, not a pointer receiver of hidden state: callers construct one on the stack
// for the duration of a single poll and pass it down by pointer so that a future which proxies
// another future (Join, Select, an adapter) can rebind Waker before delegating, then restore it
// afterwards if it polls more than one child with different wakers.
type Context struct {
	// Waker is woken by the callee when it can make further progress after returning
	// PollResultPending.
	Waker Waker
}

// NewContext creates a Context carrying the given waker.
func NewContext(waker Waker) *Context {
	return &Context{Waker: waker}
}

// Yield is a cooperative rescheduling primitive. It re-signals the context's waker and returns
// PollResultPending, giving peer tasks bound to the same scheduler a chance to run before this
// future is polled again. A future that calls Yield a bounded number of times and then completes
// produces fair, round-robin progress without starving older tasks.
func (c *Context) Yield() (PollResult, error) {
	if err := c.Waker.Wake(); err != nil {
		return nil, err
	}
	return PollResultPending, nil
}
