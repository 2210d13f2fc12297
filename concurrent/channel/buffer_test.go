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

	"github.com/botobag/asyncrt/concurrent/channel"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("PassthroughBuffer", func() {
	It("overwrites an undelivered item instead of queueing", func() {
		b := channel.NewPassthroughBuffer()
		Expect(b.TryPush(1)).Should(BeTrue())
		Expect(b.TryPush(2)).Should(BeTrue())

		item, ok := b.TryPop()
		Expect(ok).Should(BeTrue())
		Expect(item).Should(Equal(2))

		_, ok = b.TryPop()
		Expect(ok).Should(BeFalse())
	})

	It("reports static capability flags", func() {
		b := channel.NewPassthroughBuffer()
		Expect(b.SupportsMultipleSenders()).Should(BeFalse())
		Expect(b.IsPassthrough()).Should(BeTrue())
		Expect(b.IsBounded()).Should(BeTrue())
		Expect(b.Capacity()).Should(Equal(1))
	})
})

var _ = Describe("BoundedSingleSlotBuffer", func() {
	It("rejects a push while full", func() {
		b := channel.NewBoundedSingleSlotBuffer()
		Expect(b.TryPush(1)).Should(BeTrue())
		Expect(b.TryPush(2)).Should(BeFalse())

		item, ok := b.TryPop()
		Expect(ok).Should(BeTrue())
		Expect(item).Should(Equal(1))

		Expect(b.TryPush(3)).Should(BeTrue())
	})
})

var _ = Describe("UnboundedSingleSlotBuffer", func() {
	It("preserves FIFO order with no capacity ceiling", func() {
		b := channel.NewUnboundedSingleSlotBuffer()
		for i := 0; i < 100; i++ {
			Expect(b.TryPush(i)).Should(BeTrue())
		}
		for i := 0; i < 100; i++ {
			item, ok := b.TryPop()
			Expect(ok).Should(BeTrue())
			Expect(item).Should(Equal(i))
		}
		_, ok := b.TryPop()
		Expect(ok).Should(BeFalse())
	})
})

var _ = Describe("BoundedSPSCBuffer", func() {
	It("respects its ring capacity", func() {
		b := channel.NewBoundedSPSCBuffer(4)
		Expect(b.Capacity()).Should(Equal(4))
		for i := 0; i < 4; i++ {
			Expect(b.TryPush(i)).Should(BeTrue())
		}
		Expect(b.TryPush(4)).Should(BeFalse())

		item, ok := b.TryPop()
		Expect(ok).Should(BeTrue())
		Expect(item).Should(Equal(0))
		Expect(b.TryPush(4)).Should(BeTrue())
	})
})

var _ = Describe("BoundedMPSCBuffer", func() {
	It("accepts concurrent pushes from many senders up to capacity", func() {
		const senders = 8
		const perSender = 64
		b := channel.NewBoundedMPSCBuffer(senders * perSender)

		var wg sync.WaitGroup
		wg.Add(senders)
		for s := 0; s < senders; s++ {
			go func(s int) {
				defer wg.Done()
				for i := 0; i < perSender; i++ {
					for !b.TryPush(s) {
					}
				}
			}(s)
		}
		wg.Wait()

		count := 0
		for {
			_, ok := b.TryPop()
			if !ok {
				break
			}
			count++
		}
		Expect(count).Should(Equal(senders * perSender))
	})
})

var _ = Describe("UnboundedMPSCBuffer", func() {
	It("has no capacity ceiling and accepts concurrent pushes", func() {
		b := channel.NewUnboundedMPSCBuffer()
		Expect(b.IsBounded()).Should(BeFalse())
		Expect(b.Capacity()).Should(Equal(0))

		const senders = 8
		const perSender = 200
		var wg sync.WaitGroup
		wg.Add(senders)
		for s := 0; s < senders; s++ {
			go func(s int) {
				defer wg.Done()
				for i := 0; i < perSender; i++ {
					Expect(b.TryPush(s)).Should(BeTrue())
				}
			}(s)
		}
		wg.Wait()

		count := 0
		for {
			_, ok := b.TryPop()
			if !ok {
				break
			}
			count++
		}
		Expect(count).Should(Equal(senders * perSender))
	})
})
