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

// wakerQueueEntry is one registration in a WakerQueue. The node carries its own list pointers so
// the queue needs no separate allocation per entry beyond the entry itself.
type wakerQueueEntry struct {
	waker      Waker
	cancelled  bool
	prev, next *wakerQueueEntry
}

// A WakerCancelHandle released by WakerQueue.Push lets the caller remove its registration before
// it is signalled (e.g. because the operation it was waiting on completed some other way).
type WakerCancelHandle interface {
	// Cancel removes the registration. It is a no-op if the entry was already popped/signalled.
	Cancel()
}

// A WakerQueue is a multi-slot waker register: any number of wakers may be queued up; Signal pops
// and wakes exactly one (FIFO), Broadcast wakes every currently queued waker. It is the
// multi-sender counterpart to AtomicWaker, used by channel park policies to hold more than one
// blocked sender.
type WakerQueue struct {
	mu         sync.Mutex
	head, tail *wakerQueueEntry
	closing    bool
}

// Push enqueues w and returns a handle that can cancel the registration. Pushing onto a queue
// that has begun closing signals w immediately and returns a no-op handle, so a racing Push never
// misses the close broadcast.
func (q *WakerQueue) Push(w Waker) WakerCancelHandle {
	q.mu.Lock()
	if q.closing {
		q.mu.Unlock()
		_ = w.Wake()
		return noopCancelHandle{}
	}

	entry := &wakerQueueEntry{waker: w}
	if q.tail == nil {
		q.head, q.tail = entry, entry
	} else {
		entry.prev = q.tail
		q.tail.next = entry
		q.tail = entry
	}
	q.mu.Unlock()

	return &wakerQueueCancelHandle{queue: q, entry: entry}
}

// Signal pops and wakes the oldest queued waker. It is a no-op if the queue is empty.
func (q *WakerQueue) Signal() {
	q.mu.Lock()
	entry := q.popLocked()
	q.mu.Unlock()

	if entry != nil {
		_ = entry.waker.Wake()
	}
}

// Broadcast wakes every currently queued waker and empties the queue.
func (q *WakerQueue) Broadcast() {
	q.mu.Lock()
	entries := make([]*wakerQueueEntry, 0, 4)
	for e := q.head; e != nil; e = e.next {
		if !e.cancelled {
			entries = append(entries, e)
		}
	}
	q.head, q.tail = nil, nil
	q.mu.Unlock()

	for _, e := range entries {
		_ = e.waker.Wake()
	}
}

// Close marks the queue as closing: every currently queued waker is woken (as with Broadcast),
// and any future Push signals its waker immediately instead of queueing it.
func (q *WakerQueue) Close() {
	q.mu.Lock()
	q.closing = true
	entries := make([]*wakerQueueEntry, 0, 4)
	for e := q.head; e != nil; e = e.next {
		if !e.cancelled {
			entries = append(entries, e)
		}
	}
	q.head, q.tail = nil, nil
	q.mu.Unlock()

	for _, e := range entries {
		_ = e.waker.Wake()
	}
}

// popLocked removes and returns the oldest live entry; callers must hold q.mu.
func (q *WakerQueue) popLocked() *wakerQueueEntry {
	for {
		entry := q.head
		if entry == nil {
			return nil
		}
		q.removeLocked(entry)
		if !entry.cancelled {
			return entry
		}
	}
}

// removeLocked unlinks entry from the list; callers must hold q.mu.
func (q *WakerQueue) removeLocked(entry *wakerQueueEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else if q.head == entry {
		q.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else if q.tail == entry {
		q.tail = entry.prev
	}
	entry.prev, entry.next = nil, nil
}

type wakerQueueCancelHandle struct {
	queue *WakerQueue
	entry *wakerQueueEntry
}

func (h *wakerQueueCancelHandle) Cancel() {
	h.queue.mu.Lock()
	h.entry.cancelled = true
	h.queue.removeLocked(h.entry)
	h.queue.mu.Unlock()
}

// noopCancelHandle is returned for registrations that were signalled immediately and never
// entered the list, so callers can always call Cancel unconditionally on whatever Push returns.
type noopCancelHandle struct{}

func (noopCancelHandle) Cancel() {}
