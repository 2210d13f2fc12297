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

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// linkedNode is the list node UnboundedMPSC allocates per queued value.
type linkedNode[T any] struct {
	value T
	next  *linkedNode[T]
}

// UnboundedMPSC is an unbounded multi-producer/single-consumer linked queue. Push is a short
// mutex-guarded critical section updating the tail pointer, and a condition variable lets Pop
// block the single consumer until a producer arrives rather than spinning.
type UnboundedMPSC[T any] struct {
	mu       sync.Mutex
	cond     sync.Cond
	head     *linkedNode[T]
	tail     *linkedNode[T]
	closed   bool
	initOnce sync.Once
}

func (q *UnboundedMPSC[T]) init() {
	q.initOnce.Do(func() {
		q.cond.L = &q.mu
	})
}

// Push appends value to the queue. It returns false if the queue has been closed.
func (q *UnboundedMPSC[T]) Push(value T) bool {
	q.init()
	node := &linkedNode[T]{value: value}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	wasEmpty := q.head == nil
	if wasEmpty {
		q.head = node
	} else {
		q.tail.next = node
	}
	q.tail = node
	if wasEmpty {
		q.cond.Signal()
	}
	q.mu.Unlock()
	return true
}

// TryPop removes and returns the oldest value without blocking. ok is false if the queue is
// currently empty.
func (q *UnboundedMPSC[T]) TryPop() (value T, ok bool) {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Pop removes and returns the oldest value, blocking the single consumer until one is available
// or the queue is closed and drained (in which case ok is false).
func (q *UnboundedMPSC[T]) Pop() (value T, ok bool) {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == nil && !q.closed {
		q.cond.Wait()
	}
	return q.popLocked()
}

func (q *UnboundedMPSC[T]) popLocked() (value T, ok bool) {
	node := q.head
	if node == nil {
		return value, false
	}
	q.head = node.next
	if q.head == nil {
		q.tail = nil
	}
	node.next = nil
	return node.value, true
}

// Close marks the queue closed: further Push calls fail, and any consumer blocked in Pop on an
// empty queue is released (with ok=false).
func (q *UnboundedMPSC[T]) Close() {
	q.init()
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Empty reports whether the queue currently holds no items.
func (q *UnboundedMPSC[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head == nil
}

// spscNode is the node type for UnboundedSPSC's lock-free list.
type spscNode[T any] struct {
	value T
	next  unsafe.Pointer // *spscNode[T]
}

// UnboundedSPSC is a lock-free unbounded single-producer/single-consumer linked queue (the
// Michael & Scott queue specialised to one producer and one consumer, which removes the need for
// CAS on push: only the consumer ever advances head, only the producer ever advances tail). No
// channel buffer in this module is built on it.
type UnboundedSPSC[T any] struct {
	head unsafe.Pointer // *spscNode[T], consumer-owned
	tail unsafe.Pointer // *spscNode[T], producer-owned
}

// NewUnboundedSPSC creates an empty queue.
func NewUnboundedSPSC[T any]() *UnboundedSPSC[T] {
	dummy := &spscNode[T]{}
	q := &UnboundedSPSC[T]{}
	q.head = unsafe.Pointer(dummy)
	q.tail = unsafe.Pointer(dummy)
	return q
}

// Push appends value. Must only be called by the single producer.
func (q *UnboundedSPSC[T]) Push(value T) {
	node := &spscNode[T]{value: value}
	tail := (*spscNode[T])(atomic.LoadPointer(&q.tail))
	atomic.StorePointer(&tail.next, unsafe.Pointer(node))
	atomic.StorePointer(&q.tail, unsafe.Pointer(node))
}

// TryPop removes and returns the oldest value. Must only be called by the single consumer.
func (q *UnboundedSPSC[T]) TryPop() (value T, ok bool) {
	head := (*spscNode[T])(atomic.LoadPointer(&q.head))
	next := (*spscNode[T])(atomic.LoadPointer(&head.next))
	if next == nil {
		return value, false
	}
	value = next.value
	var zero T
	next.value = zero
	atomic.StorePointer(&q.head, unsafe.Pointer(next))
	return value, true
}
