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

// Observer receives notifications on channel events: a sender blocked by a full buffer, the
// channel signalling its park, and the channel closing. OnBackpressure and OnClosed fire only on
// those transitions; OnWakerSignal fires on every successful receive and on sends that signal the
// receiver (see OnWakerSignal), so an installed observer is called on the steady-state path.
type Observer interface {
	// OnBackpressure fires each time trySend finds the buffer full and rejects a push.
	OnBackpressure()

	// OnWakerSignal fires each time the channel signals its park: on every successful receive, on
	// a send that makes the buffer non-empty or fills a bounded buffer, and on every passthrough
	// send. It fires whether or not a sender or receiver was actually parked.
	OnWakerSignal()

	// OnClosed fires once, the first time the channel transitions to closed.
	OnClosed()
}

type noopChannelObserver struct{}

func (noopChannelObserver) OnBackpressure() {}
func (noopChannelObserver) OnWakerSignal()  {}
func (noopChannelObserver) OnClosed()       {}

var defaultChannelObserver Observer = noopChannelObserver{}

// SetObserver installs o to receive backpressure/wake/close notifications on this channel,
// replacing any previously installed observer. Not safe to call concurrently with Send/Recv.
func (c *Channel) SetObserver(o Observer) {
	if o == nil {
		o = defaultChannelObserver
	}
	c.observer = o
}

// SetObserver installs an Observer on the channel shared with the paired Receiver.
func (s *Sender) SetObserver(o Observer) { s.ch.SetObserver(o) }

// SetObserver installs an Observer on the channel shared with the paired Sender.
func (r *Receiver) SetObserver(o Observer) { r.ch.SetObserver(o) }
