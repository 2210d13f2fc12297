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

package concurrent_test

import (
	"sync/atomic"
	"time"

	"github.com/botobag/asyncrt/concurrent"
	"github.com/botobag/asyncrt/concurrent/future"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SerialQueueExecutor", func() {
	It("drains submitted futures on its own worker goroutine", func() {
		e := concurrent.NewSerialQueueExecutor()
		var n int32
		const count = 100
		for i := 0; i < count; i++ {
			Expect(e.TrySubmit(&countingFuture{counter: &n})).Should(Succeed())
		}

		Eventually(func() int32 { return atomic.LoadInt32(&n) }, time.Second).Should(Equal(int32(count)))
		e.Shutdown()
	})

	It("suspends and resumes draining", func() {
		e := concurrent.NewSerialQueueExecutor()
		e.Suspend()

		var n int32
		Expect(e.TrySubmit(&countingFuture{counter: &n})).Should(Succeed())

		Consistently(func() int32 { return atomic.LoadInt32(&n) }, 50*time.Millisecond).Should(Equal(int32(0)))

		e.Resume()
		Eventually(func() int32 { return atomic.LoadInt32(&n) }, time.Second).Should(Equal(int32(1)))
		e.Shutdown()
	})

	It("rejects submission once shut down", func() {
		e := concurrent.NewSerialQueueExecutor()
		e.Shutdown()
		Eventually(func() error { return e.TrySubmit(future.Ready(1)) }, time.Second).Should(MatchError(concurrent.ErrShutdown))
	})

	It("Cancel stops the worker without waiting for drain", func() {
		e := concurrent.NewSerialQueueExecutor()
		e.Cancel()
		done := make(chan struct{})
		go func() {
			e.Run()
			close(done)
		}()
		Eventually(done, time.Second).Should(BeClosed())
	})
})
