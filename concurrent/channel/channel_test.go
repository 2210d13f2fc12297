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

package channel_test

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/botobag/asyncrt/concurrent/channel"
	"github.com/botobag/asyncrt/concurrent/future"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Channel (single-sender, single-receiver)", func() {
	It("round-trips an item sent and received via BlockOn", func() {
		sender, receiver := channel.NewChannel(channel.NewBoundedSingleSlotBuffer(), channel.NewSPSCPark())

		done := make(chan struct{})
		go func() {
			defer close(done)
			value, err := future.BlockOn(receiver.Recv())
			Expect(err).ShouldNot(HaveOccurred())
			Expect(value).Should(Equal(42))
		}()

		_, err := future.BlockOn(sender.Send(42))
		Expect(err).ShouldNot(HaveOccurred())
		Eventually(done, time.Second).Should(BeClosed())
	})

	It("parks a sender at capacity and wakes it once the receiver drains a slot", func() {
		sender, receiver := channel.NewChannel(channel.NewBoundedSingleSlotBuffer(), channel.NewSPSCPark())

		Expect(sender.PollSend(newCtx(&countingWaker{}), 1)).Should(Succeed())

		w := &countingWaker{}
		result, err := sender.PollReady(newCtx(w))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).Should(Equal(future.PollResultPending))
		Expect(w.woken()).Should(Equal(int32(0)))

		item, ok, done := receiver.TryRecv()
		Expect(ok).Should(BeTrue())
		Expect(done).Should(BeFalse())
		Expect(item).Should(Equal(1))

		Expect(w.woken()).Should(Equal(int32(1)))

		result, err = sender.PollReady(newCtx(&countingWaker{}))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).ShouldNot(Equal(future.PollResultPending))
	})

	It("overwrites undelivered items on a passthrough buffer", func() {
		sender, receiver := channel.NewChannel(channel.NewPassthroughBuffer(), channel.NewSPSCPark())

		Expect(sender.PollSend(newCtx(&countingWaker{}), "stale")).Should(Succeed())
		Expect(sender.PollSend(newCtx(&countingWaker{}), "fresh")).Should(Succeed())

		item, ok, _ := receiver.TryRecv()
		Expect(ok).Should(BeTrue())
		Expect(item).Should(Equal("fresh"))

		_, ok, _ = receiver.TryRecv()
		Expect(ok).Should(BeFalse())
	})

	It("flushes only once every sent item has been received", func() {
		sender, receiver := channel.NewChannel(channel.NewUnboundedSingleSlotBuffer(), channel.NewSPSCPark())

		Expect(sender.PollSend(newCtx(&countingWaker{}), 1)).Should(Succeed())
		Expect(sender.PollSend(newCtx(&countingWaker{}), 2)).Should(Succeed())

		w := &countingWaker{}
		result, err := sender.PollFlush(newCtx(w))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).Should(Equal(future.PollResultPending))

		_, _, _ = receiver.TryRecv()
		Expect(w.woken()).Should(Equal(int32(0)))

		_, _, _ = receiver.TryRecv()
		Expect(w.woken()).Should(Equal(int32(1)))

		result, err = sender.PollFlush(newCtx(&countingWaker{}))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).ShouldNot(Equal(future.PollResultPending))
	})

	It("drains buffered items before Close resolves, then reports StreamResultNone", func() {
		sender, receiver := channel.NewChannel(channel.NewUnboundedSingleSlotBuffer(), channel.NewSPSCPark())

		Expect(sender.PollSend(newCtx(&countingWaker{}), 1)).Should(Succeed())
		Expect(sender.PollSend(newCtx(&countingWaker{}), 2)).Should(Succeed())

		var received []interface{}
		drainDone := make(chan struct{})
		go func() {
			defer close(drainDone)
			for len(received) < 2 {
				item, ok, _ := receiver.TryRecv()
				if ok {
					received = append(received, item)
				}
			}
		}()

		// Close flushes (waits for the buffer to drain) before it resolves, so by the time it
		// returns the draining goroutine above has already consumed both items.
		_, err := future.BlockOn(sender.Close())
		Expect(err).ShouldNot(HaveOccurred())
		Eventually(drainDone, time.Second).Should(BeClosed())
		Expect(received).Should(Equal([]interface{}{1, 2}))

		_, ok, done := receiver.TryRecv()
		Expect(ok).Should(BeFalse())
		Expect(done).Should(BeTrue())

		result, err := receiver.PollNext(newCtx(&countingWaker{}))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).Should(Equal(future.StreamResultNone))
	})

	It("rejects a send once the channel is closed", func() {
		sender, _ := channel.NewChannel(channel.NewUnboundedSingleSlotBuffer(), channel.NewSPSCPark())
		_, err := future.BlockOn(sender.Close())
		Expect(err).ShouldNot(HaveOccurred())

		_, err = sender.PollReady(newCtx(&countingWaker{}))
		Expect(err).Should(MatchError(channel.ErrClosed))
	})
})

var _ = Describe("Channel (multi-sender, single-receiver)", func() {
	It("delivers every item from many concurrent senders to the one receiver", func() {
		sender, receiver := channel.NewChannel(channel.NewUnboundedMPSCBuffer(), channel.NewMPSCPark())

		const senders = 10
		const perSender = 200
		var wg sync.WaitGroup
		wg.Add(senders)
		for i := 0; i < senders; i++ {
			s := sender.Clone()
			go func() {
				defer wg.Done()
				for j := 0; j < perSender; j++ {
					_, err := future.BlockOn(s.Send(j))
					Expect(err).ShouldNot(HaveOccurred())
				}
			}()
		}

		var received int32
		done := make(chan struct{})
		go func() {
			defer close(done)
			for atomic.LoadInt32(&received) < senders*perSender {
				_, ok, _ := receiver.TryRecv()
				if ok {
					atomic.AddInt32(&received, 1)
				}
			}
		}()

		wg.Wait()
		Eventually(done, 5*time.Second).Should(BeClosed())
		Expect(atomic.LoadInt32(&received)).Should(Equal(int32(senders * perSender)))
	})

	It("backpressures senders against a bounded buffer and wakes them as the receiver drains", func() {
		sender, receiver := channel.NewChannel(channel.NewBoundedMPSCBuffer(4), channel.NewMPSCPark())

		for i := 0; i < 4; i++ {
			Expect(sender.PollSend(newCtx(&countingWaker{}), i)).Should(Succeed())
		}

		w := &countingWaker{}
		result, err := sender.PollReady(newCtx(w))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).Should(Equal(future.PollResultPending))

		_, ok, _ := receiver.TryRecv()
		Expect(ok).Should(BeTrue())
		Expect(w.woken()).Should(Equal(int32(1)))
	})
})
