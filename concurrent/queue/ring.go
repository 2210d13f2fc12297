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

package queue

import "sync/atomic"

// ringStorage is the shared power-of-two-capacity slot array and masking logic behind every
// bounded ring buffer variant below. Capacity is restricted to powers of two so slot indexing is
// a mask instead of a modulo; the cursors are atomic so the ring can be shared across goroutines
// without an external lock.
type ringStorage[T any] struct {
	mask uint64
	buf  []T
}

func newRingStorage[T any](capacity int) ringStorage[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("queue: ring buffer capacity must be a power of two")
	}
	return ringStorage[T]{
		mask: uint64(capacity) - 1,
		buf:  make([]T, capacity),
	}
}

func (s *ringStorage[T]) slot(seq uint64) *T {
	return &s.buf[seq&s.mask]
}

func (s *ringStorage[T]) capacity() int {
	return len(s.buf)
}

// BoundedSPSCRing is a single-producer/single-consumer bounded ring buffer. Both head and tail
// are plain atomics advanced by exactly one goroutine each, so push/pop never need a
// compare-and-swap loop -- the cheapest buffer variant the channel engine offers.
type BoundedSPSCRing[T any] struct {
	storage ringStorage[T]
	head    atomic.Uint64 // next slot to write, producer-owned
	tail    atomic.Uint64 // next slot to read, consumer-owned
}

// NewBoundedSPSCRing creates a ring buffer of the given power-of-two capacity.
func NewBoundedSPSCRing[T any](capacity int) *BoundedSPSCRing[T] {
	return &BoundedSPSCRing[T]{storage: newRingStorage[T](capacity)}
}

// Cap returns the ring's fixed capacity.
func (r *BoundedSPSCRing[T]) Cap() int { return r.storage.capacity() }

// Len returns the number of items currently buffered. Safe to call from either side.
func (r *BoundedSPSCRing[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// TryPush inserts value if the ring isn't full. Must only be called by the single producer.
func (r *BoundedSPSCRing[T]) TryPush(value T) bool {
	head := r.head.Load()
	if int(head-r.tail.Load()) >= r.storage.capacity() {
		return false
	}
	*r.storage.slot(head) = value
	r.head.Store(head + 1)
	return true
}

// TryPop removes and returns the oldest item. Must only be called by the single consumer.
func (r *BoundedSPSCRing[T]) TryPop() (value T, ok bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return value, false
	}
	value = *r.storage.slot(tail)
	var zero T
	*r.storage.slot(tail) = zero
	r.tail.Store(tail + 1)
	return value, true
}

// BoundedMPSCRing is a multi-producer/single-consumer bounded ring buffer. Producers claim a
// slot with a CAS on head, retrying with Backoff's bounded exponential schedule on contention;
// the single consumer advances tail with a plain store.
type BoundedMPSCRing[T any] struct {
	storage ringStorage[T]
	head    atomic.Uint64
	tail    atomic.Uint64
	// written tracks, per slot, whether the producer that claimed it has finished writing, so a
	// consumer racing a slow producer never reads a half-written slot.
	written []atomic.Bool
}

// NewBoundedMPSCRing creates a ring buffer of the given power-of-two capacity.
func NewBoundedMPSCRing[T any](capacity int) *BoundedMPSCRing[T] {
	return &BoundedMPSCRing[T]{
		storage: newRingStorage[T](capacity),
		written: make([]atomic.Bool, capacity),
	}
}

// Cap returns the ring's fixed capacity.
func (r *BoundedMPSCRing[T]) Cap() int { return r.storage.capacity() }

// Len returns the number of items currently buffered.
func (r *BoundedMPSCRing[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// TryPush claims a slot and writes value, retrying on producer/producer contention up to a
// bounded number of attempts. Returns (false, atCapacity=true) if the ring is full, (false,
// atCapacity=false) if the caller should yield and retry later -- a transient contention outcome,
// distinct from atCapacity, surfaced here as the second return value.
func (r *BoundedMPSCRing[T]) TryPush(value T) (ok bool, atCapacity bool) {
	var b Backoff
	const maxAttempts = 32
	for attempt := 0; attempt < maxAttempts; attempt++ {
		head := r.head.Load()
		if int(head-r.tail.Load()) >= r.storage.capacity() {
			return false, true
		}
		if r.head.CompareAndSwap(head, head+1) {
			*r.storage.slot(head) = value
			r.written[head&r.storage.mask].Store(true)
			return true, false
		}
		b.Spin()
	}
	return false, false
}

// TryPop removes and returns the oldest fully-written item. Must only be called by the single
// consumer.
func (r *BoundedMPSCRing[T]) TryPop() (value T, ok bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return value, false
	}
	slotIdx := tail & r.storage.mask
	if !r.written[slotIdx].Load() {
		// A producer claimed this slot but hasn't finished writing yet; treat as empty for now.
		return value, false
	}
	value = *r.storage.slot(tail)
	var zero T
	*r.storage.slot(tail) = zero
	r.written[slotIdx].Store(false)
	r.tail.Store(tail + 1)
	return value, true
}

// BoundedSPMCRing is a single-producer/multi-consumer bounded ring buffer: the mirror image of
// BoundedMPSCRing, provided so a single producer can fan values out to several consumers.
type BoundedSPMCRing[T any] struct {
	storage ringStorage[T]
	head    atomic.Uint64
	tail    atomic.Uint64
	written []atomic.Bool
}

// NewBoundedSPMCRing creates a ring buffer of the given power-of-two capacity.
func NewBoundedSPMCRing[T any](capacity int) *BoundedSPMCRing[T] {
	return &BoundedSPMCRing[T]{
		storage: newRingStorage[T](capacity),
		written: make([]atomic.Bool, capacity),
	}
}

// Cap returns the ring's fixed capacity.
func (r *BoundedSPMCRing[T]) Cap() int { return r.storage.capacity() }

// Len returns the number of items currently buffered.
func (r *BoundedSPMCRing[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// TryPush inserts value if the ring isn't full. Must only be called by the single producer.
func (r *BoundedSPMCRing[T]) TryPush(value T) bool {
	head := r.head.Load()
	if int(head-r.tail.Load()) >= r.storage.capacity() {
		return false
	}
	*r.storage.slot(head) = value
	r.written[head&r.storage.mask].Store(true)
	r.head.Store(head + 1)
	return true
}

// TryPop claims and returns the oldest fully-written item, retrying on consumer/consumer
// contention up to a bounded number of attempts.
func (r *BoundedSPMCRing[T]) TryPop() (value T, ok bool) {
	var b Backoff
	const maxAttempts = 32
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tail := r.tail.Load()
		if tail == r.head.Load() {
			return value, false
		}
		slotIdx := tail & r.storage.mask
		if !r.written[slotIdx].Load() {
			return value, false
		}
		if r.tail.CompareAndSwap(tail, tail+1) {
			value = *r.storage.slot(tail)
			var zero T
			*r.storage.slot(tail) = zero
			r.written[slotIdx].Store(false)
			return value, true
		}
		b.Spin()
	}
	return value, false
}

// BoundedMPMCRing is a multi-producer/multi-consumer bounded ring buffer, combining the CAS-loop
// push of BoundedMPSCRing with the CAS-loop pop of BoundedSPMCRing. It is the most general (and
// most contended) of the four ring variants and is reserved for callers that genuinely need both
// fan-in and fan-out on the same buffer.
type BoundedMPMCRing[T any] struct {
	storage ringStorage[T]
	head    atomic.Uint64
	tail    atomic.Uint64
	written []atomic.Bool
}

// NewBoundedMPMCRing creates a ring buffer of the given power-of-two capacity.
func NewBoundedMPMCRing[T any](capacity int) *BoundedMPMCRing[T] {
	return &BoundedMPMCRing[T]{
		storage: newRingStorage[T](capacity),
		written: make([]atomic.Bool, capacity),
	}
}

// Cap returns the ring's fixed capacity.
func (r *BoundedMPMCRing[T]) Cap() int { return r.storage.capacity() }

// Len returns the number of items currently buffered.
func (r *BoundedMPMCRing[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// TryPush claims a slot and writes value. See BoundedMPSCRing.TryPush for the return semantics.
func (r *BoundedMPMCRing[T]) TryPush(value T) (ok bool, atCapacity bool) {
	var b Backoff
	const maxAttempts = 32
	for attempt := 0; attempt < maxAttempts; attempt++ {
		head := r.head.Load()
		if int(head-r.tail.Load()) >= r.storage.capacity() {
			return false, true
		}
		if r.head.CompareAndSwap(head, head+1) {
			*r.storage.slot(head) = value
			r.written[head&r.storage.mask].Store(true)
			return true, false
		}
		b.Spin()
	}
	return false, false
}

// TryPop claims and returns the oldest fully-written item.
func (r *BoundedMPMCRing[T]) TryPop() (value T, ok bool) {
	var b Backoff
	const maxAttempts = 32
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tail := r.tail.Load()
		if tail == r.head.Load() {
			return value, false
		}
		slotIdx := tail & r.storage.mask
		if !r.written[slotIdx].Load() {
			return value, false
		}
		if r.tail.CompareAndSwap(tail, tail+1) {
			value = *r.storage.slot(tail)
			var zero T
			*r.storage.slot(tail) = zero
			r.written[slotIdx].Store(false)
			return value, true
		}
		b.Spin()
	}
	return value, false
}
