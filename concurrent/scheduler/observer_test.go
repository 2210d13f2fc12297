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

package scheduler_test

import (
	"sync/atomic"

	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/scheduler"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type countingObserver struct {
	enqueued, completed, closed int32
}

func (o *countingObserver) OnTaskEnqueued()  { atomic.AddInt32(&o.enqueued, 1) }
func (o *countingObserver) OnTaskCompleted() { atomic.AddInt32(&o.completed, 1) }
func (o *countingObserver) OnClosed()        { atomic.AddInt32(&o.closed, 1) }

var _ = Describe("Observer", func() {
	It("notifies enqueue, completion, and close exactly once on LocalScheduler", func() {
		s := scheduler.NewLocalScheduler()
		obs := &countingObserver{}
		s.SetObserver(obs)

		Expect(s.Submit(future.Ready(1))).Should(Succeed())
		Expect(s.RunOnce()).Should(Equal(1))
		s.Close()
		s.Run()

		Expect(atomic.LoadInt32(&obs.enqueued)).Should(Equal(int32(1)))
		Expect(atomic.LoadInt32(&obs.completed)).Should(Equal(int32(1)))
		Expect(atomic.LoadInt32(&obs.closed)).Should(Equal(int32(1)))
	})

	It("notifies enqueue, completion, and close exactly once on SharedScheduler", func() {
		s := scheduler.NewSharedScheduler()
		obs := &countingObserver{}
		s.SetObserver(obs)

		Expect(s.Submit(future.Ready(1))).Should(Succeed())
		Expect(s.RunOnce()).Should(Equal(1))
		s.Close()

		Expect(atomic.LoadInt32(&obs.enqueued)).Should(Equal(int32(1)))
		Expect(atomic.LoadInt32(&obs.completed)).Should(Equal(int32(1)))
		Expect(atomic.LoadInt32(&obs.closed)).Should(Equal(int32(1)))
	})
})
