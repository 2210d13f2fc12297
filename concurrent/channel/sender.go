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

import (
	"errors"

	"github.com/botobag/asyncrt/concurrent/future"
)

// ErrClosed is returned by a Sender's PollReady/PollSend once the channel has been closed.
var ErrClosed = errors.New("channel: closed")

// ErrWouldBlock is returned by PollSend if called without a preceding PollReady that reported
// ready -- a contract violation by the caller, surfaced rather than silently dropping the item.
var ErrWouldBlock = errors.New("channel: send would block")

// channelReady is the sentinel PollResult value used for every ready result in this package. Its
// identity doesn't matter, only that it is never equal to future.PollResultPending.
const channelReady = true

// Sender is the producer handle of a Channel. It implements future.Sink. A Sender may be cloned
// (by copying the struct, which just copies the *Channel pointer) and used concurrently from many
// goroutines only if the underlying Buffer's SupportsMultipleSenders is true.
type Sender struct {
	ch *Channel
}

var _ future.Sink = (*Sender)(nil)

// Clone returns an independent Sender handle sharing the same underlying channel.
func (s *Sender) Clone() *Sender { return &Sender{ch: s.ch} }

// PollReady reports whether PollSend can currently be called. It registers the context's waker to
// be woken once room frees up (or the channel closes) if not.
func (s *Sender) PollReady(ctx *future.Context) (future.PollResult, error) {
	if s.ch.closed() {
		return nil, ErrClosed
	}
	if s.hasRoom() {
		return channelReady, nil
	}

	handle := s.ch.park.RegisterSend(ctx.Waker)
	// Re-check after registering: room may have freed (or the channel may have closed) between the
	// first check and the registration, and a Park's Signal only wakes registrations already in
	// place when it fires.
	if s.ch.closed() {
		handle.Cancel()
		return nil, ErrClosed
	}
	if s.hasRoom() {
		handle.Cancel()
		return channelReady, nil
	}
	return future.PollResultPending, nil
}

func (s *Sender) hasRoom() bool {
	if s.ch.buffer.IsPassthrough() || !s.ch.buffer.IsBounded() {
		return true
	}
	count, _ := unpackChannelState(s.ch.state.Load())
	return count < int64(s.ch.buffer.Capacity())
}

// PollSend hands item to the channel. Callers must only call this after PollReady returned ready.
func (s *Sender) PollSend(ctx *future.Context, item interface{}) error {
	switch s.ch.trySend(item) {
	case sendOK:
		return nil
	case sendClosed:
		return ErrClosed
	default:
		// sendAtCapacity (the PollReady contract was violated, or a rival sender stole the slot)
		// and sendRetry both mean "not this time": the item was not accepted.
		return ErrWouldBlock
	}
}

// pollSend is the poll-driven send used by Send's future: accept the item, park on capacity (with
// a post-registration re-attempt so a receive landing between the failed try and the registration
// is never missed), and yield -- not spin -- when the multi-sender reservation loop exhausts its
// budget under contention.
func (s *Sender) pollSend(ctx *future.Context, item interface{}) (future.PollResult, error) {
	switch s.ch.trySend(item) {
	case sendOK:
		return channelReady, nil
	case sendClosed:
		return nil, ErrClosed
	case sendRetry:
		return ctx.Yield()
	}

	// At capacity: park first, then re-attempt, so a concurrent receive can't slip between the
	// failed try and the registration.
	handle := s.ch.park.RegisterSend(ctx.Waker)
	switch s.ch.trySend(item) {
	case sendOK:
		handle.Cancel()
		return channelReady, nil
	case sendClosed:
		handle.Cancel()
		return nil, ErrClosed
	case sendRetry:
		handle.Cancel()
		return ctx.Yield()
	}
	return future.PollResultPending, nil
}

// PollFlush reports ready once every sent item has been received.
func (s *Sender) PollFlush(ctx *future.Context) (future.PollResult, error) {
	if s.ch.isEmpty() {
		return channelReady, nil
	}

	handle := s.ch.park.RegisterFlush(ctx.Waker)
	if s.ch.isEmpty() {
		handle.Cancel()
		return channelReady, nil
	}
	// Poke the receiver so a parked consumer gets a chance to drain the items this flush is
	// waiting on.
	s.ch.park.SignalRecv()
	return future.PollResultPending, nil
}

// PollClose flushes then closes the channel; once ready, no further PollSend will succeed and the
// Receiver observes StreamResultNone once the buffer drains.
func (s *Sender) PollClose(ctx *future.Context) (future.PollResult, error) {
	result, err := s.PollFlush(ctx)
	if err != nil || result == future.PollResultPending {
		return result, err
	}
	s.ch.close()
	return channelReady, nil
}

// Send returns a future.Future that resolves once item has been accepted by the channel,
// combining PollReady and PollSend into a single poll-driven operation for callers that don't need
// to observe readiness separately.
func (s *Sender) Send(item interface{}) future.Future {
	return &sendFuture{sender: s, item: item}
}

type sendFuture struct {
	sender *Sender
	item   interface{}
	sent   bool
}

func (f *sendFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	if f.sent {
		return channelReady, nil
	}
	result, err := f.sender.pollSend(ctx, f.item)
	if err != nil || result == future.PollResultPending {
		return result, err
	}
	f.sent = true
	return channelReady, nil
}

// Flush returns a future.Future resolving once all previously sent items have been received.
func (s *Sender) Flush() future.Future {
	return funcFuture(s.PollFlush)
}

// Close returns a future.Future resolving once the channel has flushed and closed.
func (s *Sender) Close() future.Future {
	return funcFuture(s.PollClose)
}

// funcFuture adapts a bare poll function to future.Future, for the handful of operations here
// (Flush, Close) whose entire state already lives in the Channel/Sender/Receiver they close over.
type funcFuture func(ctx *future.Context) (future.PollResult, error)

func (f funcFuture) Poll(ctx *future.Context) (future.PollResult, error) { return f(ctx) }

var _ future.Future = funcFuture(nil)
