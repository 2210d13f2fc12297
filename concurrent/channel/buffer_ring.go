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

import "github.com/botobag/asyncrt/concurrent/queue"

// BoundedSPSCBuffer adapts queue.BoundedSPSCRing as a channel Buffer for the single-sender,
// single-receiver case: the cheapest ring variant, no CAS on either side.
type BoundedSPSCBuffer struct {
	ring *queue.BoundedSPSCRing[interface{}]
}

// NewBoundedSPSCBuffer creates a buffer backed by a power-of-two capacity ring.
func NewBoundedSPSCBuffer(capacity int) *BoundedSPSCBuffer {
	return &BoundedSPSCBuffer{ring: queue.NewBoundedSPSCRing[interface{}](capacity)}
}

func (b *BoundedSPSCBuffer) SupportsMultipleSenders() bool      { return false }
func (b *BoundedSPSCBuffer) IsPassthrough() bool                { return false }
func (b *BoundedSPSCBuffer) IsBounded() bool                    { return true }
func (b *BoundedSPSCBuffer) Capacity() int                      { return b.ring.Cap() }
func (b *BoundedSPSCBuffer) TryPush(item interface{}) bool      { return b.ring.TryPush(item) }
func (b *BoundedSPSCBuffer) TryPop() (interface{}, bool)        { return b.ring.TryPop() }

// BoundedMPSCBuffer adapts queue.BoundedMPSCRing as a channel Buffer for the multi-sender,
// single-receiver case.
type BoundedMPSCBuffer struct {
	ring *queue.BoundedMPSCRing[interface{}]
}

// NewBoundedMPSCBuffer creates a buffer backed by a power-of-two capacity ring.
func NewBoundedMPSCBuffer(capacity int) *BoundedMPSCBuffer {
	return &BoundedMPSCBuffer{ring: queue.NewBoundedMPSCRing[interface{}](capacity)}
}

func (b *BoundedMPSCBuffer) SupportsMultipleSenders() bool { return true }
func (b *BoundedMPSCBuffer) IsPassthrough() bool           { return false }
func (b *BoundedMPSCBuffer) IsBounded() bool               { return true }
func (b *BoundedMPSCBuffer) Capacity() int                 { return b.ring.Cap() }

// TryPush adapts BoundedMPSCRing.TryPush's (ok, atCapacity) pair down to Buffer's single bool:
// Channel's own atomic state word is what actually enforces capacity and chooses retry-vs-park,
// so the ring's "transient contention, try again" signal is absorbed here as a plain failure that
// the caller's ordinary trySend retry loop already handles.
func (b *BoundedMPSCBuffer) TryPush(item interface{}) bool {
	ok, _ := b.ring.TryPush(item)
	return ok
}

func (b *BoundedMPSCBuffer) TryPop() (interface{}, bool) { return b.ring.TryPop() }

// UnboundedMPSCBuffer adapts queue.UnboundedMPSC as a channel Buffer for the multi-sender,
// single-receiver case with no capacity ceiling.
type UnboundedMPSCBuffer struct {
	q *queue.UnboundedMPSC[interface{}]
}

// NewUnboundedMPSCBuffer creates an empty unbounded linked buffer.
func NewUnboundedMPSCBuffer() *UnboundedMPSCBuffer {
	return &UnboundedMPSCBuffer{q: &queue.UnboundedMPSC[interface{}]{}}
}

func (b *UnboundedMPSCBuffer) SupportsMultipleSenders() bool { return true }
func (b *UnboundedMPSCBuffer) IsPassthrough() bool           { return false }
func (b *UnboundedMPSCBuffer) IsBounded() bool               { return false }
func (b *UnboundedMPSCBuffer) Capacity() int                 { return 0 }
func (b *UnboundedMPSCBuffer) TryPush(item interface{}) bool { return b.q.Push(item) }
func (b *UnboundedMPSCBuffer) TryPop() (interface{}, bool)   { return b.q.TryPop() }

var (
	_ Buffer = (*BoundedSPSCBuffer)(nil)
	_ Buffer = (*BoundedMPSCBuffer)(nil)
	_ Buffer = (*UnboundedMPSCBuffer)(nil)
)
