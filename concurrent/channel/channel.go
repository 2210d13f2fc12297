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
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/queue"
)

// Channel is the shared core behind a Sender/Receiver pair: an item Buffer, a Park policy for
// parked goroutines, and a single atomic state word packing the live item count alongside a
// closed flag, following the same bit-packed-word-plus-CAS-loop discipline as the scheduler's task
// and run-state words. The count lets PollReady/PollFlush answer "is there room" / "is it empty"
// without reaching into the buffer, which for ring-backed buffers would otherwise require a
// separate lock just to read Len().
type Channel struct {
	buffer Buffer
	park   Park
	// state packs count in the high bits and the closed flag in bit 0.
	state atomic.Int64

	observer Observer
}

const channelClosedBit = int64(1)

func packChannelState(count int64, closed bool) int64 {
	s := count << 1
	if closed {
		s |= channelClosedBit
	}
	return s
}

func unpackChannelState(s int64) (count int64, closed bool) {
	return s >> 1, s&channelClosedBit != 0
}

// NewChannel creates a Channel around buffer and park and returns its Sender/Receiver handles.
// buffer.SupportsMultipleSenders must agree with whether more than one Sender will be cloned from
// the returned handle (Sender itself is freely copyable/clonable; this is a construction-time
// contract, not something Channel enforces at runtime).
func NewChannel(buffer Buffer, park Park) (*Sender, *Receiver) {
	c := &Channel{buffer: buffer, park: park, observer: defaultChannelObserver}
	return &Sender{ch: c}, &Receiver{ch: c}
}

// sendOutcome is the result of a trySend attempt.
type sendOutcome int

const (
	// sendOK: the item was accepted.
	sendOK sendOutcome = iota
	// sendAtCapacity: the buffer is full; the sender should park and wait for a receive.
	sendAtCapacity
	// sendClosed: the channel was closed; the item was not accepted.
	sendClosed
	// sendRetry: the multi-sender CAS budget was exhausted under contention; the caller should
	// yield to its peers and try again, rather than keep spinning inside a cooperative scheduler.
	sendRetry
)

// maxSendAttempts bounds the multi-sender reservation loop before it gives up with sendRetry.
const maxSendAttempts = 32

// trySend attempts to push item without parking, dispatching on the buffer's sender cardinality:
// a single sender never contends on the count word (its only writer is this call), so it can use
// plain fetch-add accounting; multiple senders must reserve a slot with a bounded
// compare-and-swap loop.
func (c *Channel) trySend(item interface{}) sendOutcome {
	if c.buffer.SupportsMultipleSenders() {
		return c.trySendMulti(item)
	}
	return c.trySendSingle(item)
}

// trySendSingle is the single-sender fast path: no reservation CAS is needed because nothing else
// increments count, only the receiver's decrement and close() race with it.
func (c *Channel) trySendSingle(item interface{}) sendOutcome {
	s := c.state.Load()
	count, isClosed := unpackChannelState(s)
	if isClosed {
		return sendClosed
	}

	if c.buffer.IsPassthrough() {
		// Passthrough always accepts, overwriting any undelivered item; count saturates at 1 since
		// an overwrite doesn't add a second item.
		c.buffer.TryPush(item)
		for {
			s = c.state.Load()
			count, isClosed = unpackChannelState(s)
			if isClosed {
				// close() raced the push; the receiver still drains the slot, but this send reports
				// cancelled.
				return sendClosed
			}
			if count == 1 || c.state.CompareAndSwap(s, packChannelState(1, false)) {
				break
			}
		}
		c.park.SignalRecv()
		c.observer.OnWakerSignal()
		return sendOK
	}

	if c.buffer.IsBounded() && count >= int64(c.buffer.Capacity()) {
		c.observer.OnBackpressure()
		return sendAtCapacity
	}
	if !c.buffer.TryPush(item) {
		// The buffer is full even though count hasn't caught up yet (the receiver pops before it
		// decrements); treat as capacity so the sender parks and a receive wakes it.
		c.observer.OnBackpressure()
		return sendAtCapacity
	}

	prev := c.state.Add(2) - 2
	if prevCount, _ := unpackChannelState(prev); prevCount == 0 {
		c.park.SignalRecv()
		c.observer.OnWakerSignal()
	}
	return sendOK
}

// trySendMulti reserves a slot in the count word with a CAS before pushing, retrying with
// exponential backoff on contention. The retry budget is bounded: past it the caller gets
// sendRetry and yields instead of monopolising its scheduler thread.
func (c *Channel) trySendMulti(item interface{}) sendOutcome {
	var b queue.Backoff
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		s := c.state.Load()
		count, isClosed := unpackChannelState(s)
		if isClosed {
			return sendClosed
		}
		if c.buffer.IsBounded() && count >= int64(c.buffer.Capacity()) {
			c.observer.OnBackpressure()
			return sendAtCapacity
		}

		if !c.state.CompareAndSwap(s, packChannelState(count+1, false)) {
			b.Spin()
			continue
		}

		if !c.buffer.TryPush(item) {
			// Lost a race against the buffer's own internal capacity accounting (e.g. a concurrent
			// sender filled the last slot between our count check and TryPush); give back the
			// reservation and retry from the top.
			c.state.Add(-2)
			b.Spin()
			continue
		}

		// Wake the receiver on the transitions it can be parked on: an empty buffer gaining its
		// first item, or a bounded buffer filling up (a flush/close may be gated on the drain).
		if count == 0 || (c.buffer.IsBounded() && count+1 >= int64(c.buffer.Capacity())) {
			c.park.SignalRecv()
			c.observer.OnWakerSignal()
		}
		return sendOK
	}
	return sendRetry
}

// tryRecv attempts to pop an item without parking. ok is true if an item was returned. done is
// true if the buffer is empty and the channel is closed, meaning no further item will ever arrive.
func (c *Channel) tryRecv() (item interface{}, ok bool, done bool) {
	item, popped := c.buffer.TryPop()
	if !popped {
		_, isClosed := unpackChannelState(c.state.Load())
		return nil, false, isClosed
	}

	var empty bool
	for {
		s := c.state.Load()
		count, isClosed := unpackChannelState(s)
		newCount := count - 1
		if newCount < 0 {
			newCount = 0
		}
		if c.state.CompareAndSwap(s, packChannelState(newCount, isClosed)) {
			empty = newCount == 0
			break
		}
	}

	c.park.SignalSend()
	c.observer.OnWakerSignal()
	if empty {
		c.park.SignalFlush()
	}
	return item, true, false
}

// isEmpty reports whether the live item count is currently zero.
func (c *Channel) isEmpty() bool {
	count, _ := unpackChannelState(c.state.Load())
	return count == 0
}

// close marks the channel closed, idempotently, and wakes every parked sender, receiver, and
// flush-waiter so none blocks forever on a channel that will no longer change.
func (c *Channel) close() {
	for {
		s := c.state.Load()
		count, isClosed := unpackChannelState(s)
		if isClosed {
			return
		}
		if c.state.CompareAndSwap(s, packChannelState(count, true)) {
			c.park.Close()
			c.observer.OnClosed()
			return
		}
	}
}

func (c *Channel) closed() bool {
	_, isClosed := unpackChannelState(c.state.Load())
	return isClosed
}
