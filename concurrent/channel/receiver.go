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

package channel

import "github.com/botobag/asyncrt/concurrent/future"

// Receiver is the single consumer handle of a Channel. It implements future.Stream. Unlike
// Sender, a Receiver is never cloned -- every Buffer/Park pairing here assumes exactly one
// consumer, so sharing a Receiver across goroutines without external synchronization would race
// on which goroutine's waker ends up registered.
type Receiver struct {
	ch *Channel
}

var _ future.Stream = (*Receiver)(nil)

// PollNext pulls the next item out of the channel, registering ctx.Waker for wakeup if none is
// currently available. Returns future.StreamResultNone once the channel is closed and drained.
func (r *Receiver) PollNext(ctx *future.Context) (future.PollResult, error) {
	item, ok, done := r.ch.tryRecv()
	if ok {
		return item, nil
	}
	if done {
		return future.StreamResultNone, nil
	}

	r.ch.park.RegisterRecv(ctx.Waker)
	// Re-check: a sender may have pushed (or closed) between the first tryRecv and registering for
	// wakeup, and Park's Signal only reaches registrations already in place when it fires.
	item, ok, done = r.ch.tryRecv()
	if ok {
		return item, nil
	}
	if done {
		return future.StreamResultNone, nil
	}
	return future.PollResultPending, nil
}

// TryRecv is a non-blocking, poll-independent accessor for callers driving the channel outside of
// a future (e.g. from ordinary goroutine code). ok is false both when the channel is merely empty
// and when it is closed and drained; done distinguishes the latter.
func (r *Receiver) TryRecv() (item interface{}, ok bool, done bool) {
	return r.ch.tryRecv()
}

// Recv returns a future.Future resolving to the next item, or to future.StreamResultNone once the
// channel is exhausted.
func (r *Receiver) Recv() future.Future {
	return funcFuture(r.PollNext)
}
