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

import "sync"

// PassthroughBuffer holds at most one item and always accepts a push, overwriting whatever
// hadn't yet been received. This is "single-consumer-of-truth" semantics: a fast producer can
// blow past a slow consumer and the consumer only ever observes the latest value. Used for
// sample/coalescing channels (e.g. "latest configuration"), not work queues.
type PassthroughBuffer struct {
	mu      sync.Mutex
	item    interface{}
	hasItem bool
}

// NewPassthroughBuffer creates an empty passthrough buffer.
func NewPassthroughBuffer() *PassthroughBuffer { return &PassthroughBuffer{} }

func (b *PassthroughBuffer) SupportsMultipleSenders() bool { return false }
func (b *PassthroughBuffer) IsPassthrough() bool           { return true }
func (b *PassthroughBuffer) IsBounded() bool               { return true }
func (b *PassthroughBuffer) Capacity() int                 { return 1 }

// TryPush always succeeds, replacing any undelivered item.
func (b *PassthroughBuffer) TryPush(item interface{}) bool {
	b.mu.Lock()
	b.item = item
	b.hasItem = true
	b.mu.Unlock()
	return true
}

func (b *PassthroughBuffer) TryPop() (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasItem {
		return nil, false
	}
	item := b.item
	b.item = nil
	b.hasItem = false
	return item, true
}

// BoundedSingleSlotBuffer holds at most one item and rejects a push while full, unlike
// PassthroughBuffer's overwrite semantics -- the buffer for a capacity-1 channel used as a
// backpressure point rather than a "latest value" sample.
type BoundedSingleSlotBuffer struct {
	mu      sync.Mutex
	item    interface{}
	hasItem bool
}

// NewBoundedSingleSlotBuffer creates an empty bounded single-slot buffer.
func NewBoundedSingleSlotBuffer() *BoundedSingleSlotBuffer { return &BoundedSingleSlotBuffer{} }

func (b *BoundedSingleSlotBuffer) SupportsMultipleSenders() bool { return false }
func (b *BoundedSingleSlotBuffer) IsPassthrough() bool           { return false }
func (b *BoundedSingleSlotBuffer) IsBounded() bool               { return true }
func (b *BoundedSingleSlotBuffer) Capacity() int                 { return 1 }

func (b *BoundedSingleSlotBuffer) TryPush(item interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hasItem {
		return false
	}
	b.item = item
	b.hasItem = true
	return true
}

func (b *BoundedSingleSlotBuffer) TryPop() (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasItem {
		return nil, false
	}
	item := b.item
	b.item = nil
	b.hasItem = false
	return item, true
}

// UnboundedSingleSlotBuffer holds an arbitrary number of items behind one mutex-protected slice.
// It exists as the simplest unbounded buffer; UnboundedMPSCBuffer is the other unbounded buffer,
// backed by queue.UnboundedMPSC's linked list.
type UnboundedSingleSlotBuffer struct {
	mu    sync.Mutex
	items []interface{}
}

// NewUnboundedSingleSlotBuffer creates an empty unbounded buffer.
func NewUnboundedSingleSlotBuffer() *UnboundedSingleSlotBuffer {
	return &UnboundedSingleSlotBuffer{}
}

func (b *UnboundedSingleSlotBuffer) SupportsMultipleSenders() bool { return true }
func (b *UnboundedSingleSlotBuffer) IsPassthrough() bool           { return false }
func (b *UnboundedSingleSlotBuffer) IsBounded() bool               { return false }
func (b *UnboundedSingleSlotBuffer) Capacity() int                 { return 0 }

func (b *UnboundedSingleSlotBuffer) TryPush(item interface{}) bool {
	b.mu.Lock()
	b.items = append(b.items, item)
	b.mu.Unlock()
	return true
}

func (b *UnboundedSingleSlotBuffer) TryPop() (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return nil, false
	}
	item := b.items[0]
	b.items[0] = nil
	b.items = b.items[1:]
	return item, true
}

var (
	_ Buffer = (*PassthroughBuffer)(nil)
	_ Buffer = (*BoundedSingleSlotBuffer)(nil)
	_ Buffer = (*UnboundedSingleSlotBuffer)(nil)
)
