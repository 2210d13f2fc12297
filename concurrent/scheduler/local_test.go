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
	"sync"
	"sync/atomic"
	"time"

	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/scheduler"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// parkOnce is a Future that returns Pending exactly once, stashing the Waker it was given so a
// test can signal it from outside the scheduler, then resolves to value on the next poll.
type parkOnce struct {
	value  interface{}
	parked bool
	waker  future.Waker
}

func (f *parkOnce) Poll(ctx *future.Context) (future.PollResult, error) {
	if !f.parked {
		f.parked = true
		f.waker = ctx.Waker
		return future.PollResultPending, nil
	}
	return f.value, nil
}

// yieldingRecorder cooperatively yields a fixed number of times before resolving, appending its
// id to a shared order slice on every poll so a test can assert the dispatch interleaving.
type yieldingRecorder struct {
	id     string
	yields int
	order  *[]string
}

func (f *yieldingRecorder) Poll(ctx *future.Context) (future.PollResult, error) {
	*f.order = append(*f.order, f.id)
	if f.yields > 0 {
		f.yields--
		return ctx.Yield()
	}
	return f.id, nil
}

// countingFuture resolves immediately on its first poll, bumping a shared counter.
type countingFuture struct {
	counter *int32
}

func (f *countingFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	atomic.AddInt32(f.counter, 1)
	return nil, nil
}

var _ = Describe("LocalScheduler", func() {
	It("runs a future that is ready on the first poll", func() {
		s := scheduler.NewLocalScheduler()
		Expect(s.Submit(future.Ready(1))).Should(Succeed())
		Expect(s.RunOnce()).Should(Equal(1))
		Expect(s.Idle()).Should(BeTrue())
	})

	It("parks a pending future until its waker signals, then completes it", func() {
		s := scheduler.NewLocalScheduler()
		f := &parkOnce{value: 7}
		Expect(s.Submit(f)).Should(Succeed())

		// First RunOnce polls the task into Pending; it leaves the ready queue.
		Expect(s.RunOnce()).Should(Equal(1))
		Expect(s.Idle()).Should(BeFalse())

		// Nothing is ready until the stashed waker fires.
		Expect(s.RunOnce()).Should(Equal(0))

		Expect(f.waker).ShouldNot(BeNil())
		Expect(f.waker.Wake()).Should(Succeed())

		Expect(s.RunOnce()).Should(Equal(1))
		Expect(s.Idle()).Should(BeTrue())
	})

	It("round-robins yielding tasks fairly within a single RunOnce", func() {
		s := scheduler.NewLocalScheduler()
		var order []string
		Expect(s.Submit(&yieldingRecorder{id: "A", yields: 3, order: &order})).Should(Succeed())
		Expect(s.Submit(&yieldingRecorder{id: "B", yields: 2, order: &order})).Should(Succeed())

		// A wakeup raised during a task's own poll (Yield signals the waker mid-poll) sends the
		// task to the back of the ready queue rather than being dropped or re-driven in place.
		Expect(s.RunOnce()).Should(Equal(7))
		Expect(order).Should(Equal([]string{"A", "B", "A", "B", "A", "B", "A"}))
		Expect(s.Idle()).Should(BeTrue())
	})

	It("rejects Submit once Close has been called", func() {
		s := scheduler.NewLocalScheduler()
		s.Close()
		Expect(s.Submit(future.Ready(1))).Should(MatchError(scheduler.ErrSchedulerClosed))
	})

	It("returns from Run once closed and drained", func() {
		s := scheduler.NewLocalScheduler()
		Expect(s.Submit(future.Ready(1))).Should(Succeed())
		s.Close()

		done := make(chan struct{})
		go func() {
			s.Run()
			close(done)
		}()

		Eventually(done, time.Second).Should(BeClosed())
	})

	It("reuses a completed task's slot for a later submission", func() {
		s := scheduler.NewLocalScheduler()
		var polled int32
		for i := 0; i < 3; i++ {
			Expect(s.Submit(&countingFuture{counter: &polled})).Should(Succeed())
			Expect(s.RunOnce()).Should(Equal(1))
		}
		Expect(atomic.LoadInt32(&polled)).Should(Equal(int32(3)))
	})

	It("drives many independently-parked tasks to completion", func() {
		s := scheduler.NewLocalScheduler()
		const n = 50
		futures := make([]*parkOnce, n)
		for i := range futures {
			futures[i] = &parkOnce{value: i}
			Expect(s.Submit(futures[i])).Should(Succeed())
		}
		Expect(s.RunOnce()).Should(Equal(n))

		var wg sync.WaitGroup
		for _, f := range futures {
			wg.Add(1)
			go func(f *parkOnce) {
				defer wg.Done()
				f.waker.Wake()
			}(f)
		}
		wg.Wait()

		Eventually(func() bool {
			s.RunOnce()
			return s.Idle()
		}, time.Second).Should(BeTrue())
	})
})
