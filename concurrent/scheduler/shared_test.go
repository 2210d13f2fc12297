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

var _ = Describe("SharedScheduler", func() {
	It("drains many concurrently-submitted immediately-ready futures", func() {
		s := scheduler.NewSharedScheduler()
		const n = 2000
		var completed int32

		done := make(chan struct{})
		go func() {
			s.Run()
			close(done)
		}()

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				Expect(s.Submit(&sharedCountingFuture{counter: &completed})).Should(Succeed())
			}()
		}
		wg.Wait()

		Eventually(func() int32 { return atomic.LoadInt32(&completed) }, 2*time.Second).Should(Equal(int32(n)))
		Eventually(s.Idle, time.Second).Should(BeTrue())

		s.Close()
		Eventually(done, time.Second).Should(BeClosed())
	})

	It("wakes a parked task signalled from another goroutine", func() {
		s := scheduler.NewSharedScheduler()
		f := &sharedParkOnce{value: 99}
		Expect(s.Submit(f)).Should(Succeed())

		done := make(chan struct{})
		go func() {
			s.Run()
			close(done)
		}()

		Eventually(func() future.Waker {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.waker
		}, time.Second).ShouldNot(BeNil())

		f.mu.Lock()
		w := f.waker
		f.mu.Unlock()
		Expect(w.Wake()).Should(Succeed())

		Eventually(s.Idle, time.Second).Should(BeTrue())
		s.Close()
		Eventually(done, time.Second).Should(BeClosed())
	})

	It("rejects Submit once closed", func() {
		s := scheduler.NewSharedScheduler()
		s.Close()
		Expect(s.Submit(future.Ready(1))).Should(MatchError(scheduler.ErrSchedulerClosed))
	})
})

type sharedCountingFuture struct {
	counter *int32
}

func (f *sharedCountingFuture) Poll(ctx *future.Context) (future.PollResult, error) {
	atomic.AddInt32(f.counter, 1)
	return nil, nil
}

type sharedParkOnce struct {
	value interface{}

	mu     sync.Mutex
	parked bool
	waker  future.Waker
}

func (f *sharedParkOnce) Poll(ctx *future.Context) (future.PollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.parked {
		f.parked = true
		f.waker = ctx.Waker
		return future.PollResultPending, nil
	}
	return f.value, nil
}
