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

// Package channel implements a parametric channel: pick a Buffer (item storage) and a Park
// (sender/flush wakeup strategy), and Channel composes them behind a uniform Send/Recv/Flush/
// Close API driven by Future/Context, mirroring the future package's poll contract instead of
// Go's native "chan" semantics.
package channel

// Buffer stores items in transit between senders and the channel's one receiver. Implementations
// expose static capability flags so Channel can pick the right fast path without a type switch on
// every operation.
type Buffer interface {
	// SupportsMultipleSenders reports whether concurrent TryPush calls from more than one
	// goroutine are safe.
	SupportsMultipleSenders() bool

	// IsPassthrough reports whether Push overwrites any undelivered item instead of queueing
	// alongside it (capacity is always 1 for a passthrough buffer).
	IsPassthrough() bool

	// IsBounded reports whether Capacity is a hard ceiling TryPush will refuse to exceed.
	IsBounded() bool

	// Capacity returns the buffer's capacity, or 0 if unbounded.
	Capacity() int

	// TryPush inserts item. Returns false if the buffer is full (bounded, non-passthrough only --
	// passthrough buffers never return false).
	TryPush(item interface{}) bool

	// TryPop removes and returns the oldest (or, for passthrough, the only) item. ok is false if
	// the buffer is currently empty.
	TryPop() (item interface{}, ok bool)
}
