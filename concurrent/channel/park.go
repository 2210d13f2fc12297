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

// A Park policy holds the wakers for producers blocked on a full buffer and for flush-waiters
// blocked on a non-empty one, and wakes them when the receiver makes room or drains the buffer.
// It is the half of Channel that differs between the single-sender and multi-sender cases: one
// parked sender needs only a single-slot register, many need a FIFO queue so none starves.
type Park interface {
	// RegisterSend arms w to be woken the next time the receiver frees a slot. Returns a handle
	// the sender can use to withdraw the registration (e.g. if it observed room some other way
	// before being woken).
	RegisterSend(w future.Waker) future.WakerCancelHandle

	// SignalSend wakes one sender parked on RegisterSend (or all of them, depending on policy),
	// called after the receiver frees at least one slot.
	SignalSend()

	// RegisterRecv arms w to be woken the next time an item becomes available.
	RegisterRecv(w future.Waker)

	// SignalRecv wakes the receiver parked on RegisterRecv, called after a sender pushes an item.
	SignalRecv()

	// RegisterFlush arms w to be woken once the buffer has drained to empty.
	RegisterFlush(w future.Waker) future.WakerCancelHandle

	// SignalFlush wakes flush-waiters, called whenever the buffer becomes empty.
	SignalFlush()

	// Close wakes every currently parked sender, receiver, and flush-waiter, and arranges for any
	// future registration to be woken immediately instead of blocking forever on a channel that
	// will never produce or drain further.
	Close()
}

// SPSCPark is the single-sender, single-receiver Park: one AtomicWaker per role, since at most one
// goroutine is ever parked in each.
type SPSCPark struct {
	send  future.AtomicWaker
	recv  future.AtomicWaker
	flush future.AtomicWaker
}

// NewSPSCPark creates a Park for single-sender, single-receiver channels.
func NewSPSCPark() *SPSCPark { return &SPSCPark{} }

func (p *SPSCPark) RegisterSend(w future.Waker) future.WakerCancelHandle {
	p.send.Register(w)
	return spscCancelHandle{waker: &p.send}
}

func (p *SPSCPark) SignalSend() { p.send.Signal() }

func (p *SPSCPark) RegisterRecv(w future.Waker) { p.recv.Register(w) }

func (p *SPSCPark) SignalRecv() { p.recv.Signal() }

func (p *SPSCPark) RegisterFlush(w future.Waker) future.WakerCancelHandle {
	p.flush.Register(w)
	return spscCancelHandle{waker: &p.flush}
}

func (p *SPSCPark) SignalFlush() { p.flush.Signal() }

func (p *SPSCPark) Close() {
	p.send.Signal()
	p.recv.Signal()
	p.flush.Signal()
}

// spscCancelHandle clears an AtomicWaker's registration without signalling it.
type spscCancelHandle struct {
	waker *future.AtomicWaker
}

func (h spscCancelHandle) Cancel() { h.waker.Clear() }

// MPSCPark is the multi-sender, single-receiver Park: senders queue behind a WakerQueue (any
// number may be parked at once), as do flush-waiters, all of which SignalFlush wakes together;
// the receiver uses a single-slot register since only one receiver exists at a time.
type MPSCPark struct {
	send  future.WakerQueue
	recv  future.AtomicWaker
	flush future.WakerQueue
}

// NewMPSCPark creates a Park for multi-sender, single-receiver channels.
func NewMPSCPark() *MPSCPark { return &MPSCPark{} }

func (p *MPSCPark) RegisterSend(w future.Waker) future.WakerCancelHandle {
	return p.send.Push(w)
}

func (p *MPSCPark) SignalSend() { p.send.Signal() }

func (p *MPSCPark) RegisterRecv(w future.Waker) { p.recv.Register(w) }

func (p *MPSCPark) SignalRecv() { p.recv.Signal() }

func (p *MPSCPark) RegisterFlush(w future.Waker) future.WakerCancelHandle {
	return p.flush.Push(w)
}

func (p *MPSCPark) SignalFlush() { p.flush.Broadcast() }

func (p *MPSCPark) Close() {
	p.send.Close()
	p.recv.Signal()
	p.flush.Close()
}

var (
	_ Park = (*SPSCPark)(nil)
	_ Park = (*MPSCPark)(nil)
)
