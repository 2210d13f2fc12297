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

package queue_test

import (
	"sync"

	"github.com/botobag/asyncrt/concurrent/queue"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UnboundedMPSC", func() {
	It("accepts a value and pops it back", func() {
		var q queue.UnboundedMPSC[int]
		Expect(q.Empty()).Should(BeTrue())
		Expect(q.Push(42)).Should(BeTrue())
		Expect(q.Empty()).Should(BeFalse())
		v, ok := q.TryPop()
		Expect(ok).Should(BeTrue())
		Expect(v).Should(Equal(42))
		Expect(q.Empty()).Should(BeTrue())
	})

	It("disallows push once closed", func() {
		var q queue.UnboundedMPSC[int]
		q.Close()
		Expect(q.Push(1)).Should(BeFalse())
	})

	It("unblocks Pop on an empty closed queue", func() {
		var q queue.UnboundedMPSC[int]
		done := make(chan bool, 1)
		go func() {
			_, ok := q.Pop()
			done <- ok
		}()
		q.Close()
		Eventually(done).Should(Receive(BeFalse()))
	})

	It("delivers every value exactly once across multiple producers", func() {
		var q queue.UnboundedMPSC[int]
		const producers = 8
		const perProducer = 500

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(base int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					q.Push(base*perProducer + i)
				}
			}(p)
		}
		wg.Wait()

		seen := make(map[int]bool, producers*perProducer)
		for len(seen) < producers*perProducer {
			v, ok := q.TryPop()
			Expect(ok).Should(BeTrue())
			Expect(seen[v]).Should(BeFalse())
			seen[v] = true
		}
	})
})

var _ = Describe("UnboundedSPSC", func() {
	It("yields values in FIFO order between one producer and one consumer", func() {
		const n = 5000
		q := queue.NewUnboundedSPSC[int]()

		done := make(chan struct{})
		go func() {
			for i := 0; i < n; i++ {
				q.Push(i)
			}
			close(done)
		}()

		received := make([]int, 0, n)
		for len(received) < n {
			if v, ok := q.TryPop(); ok {
				received = append(received, v)
			}
		}
		<-done

		for i, v := range received {
			Expect(v).Should(Equal(i))
		}
	})
})
