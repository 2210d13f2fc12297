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

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/botobag/asyncrt/concurrent/channel"
	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/scheduler"
)

func buildBenchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a small throughput benchmark against one part of the runtime",
	}

	cmd.AddCommand(buildBenchChannelCommand())
	cmd.AddCommand(buildBenchSchedCommand())

	return cmd
}

func buildBenchChannelCommand() *cobra.Command {
	var count int
	var capacity int

	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Measure send/receive throughput on a bounded MPSC channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchChannel(cmd, count, capacity)
		},
	}

	cmd.Flags().IntVar(&count, "count", 100000, "number of items to send")
	cmd.Flags().IntVar(&capacity, "capacity", 64, "channel buffer capacity")

	return cmd
}

func benchChannel(cmd *cobra.Command, count, capacity int) error {
	if capacity <= 0 {
		capacity = 64
	}
	sender, receiver := channel.NewChannel(channel.NewBoundedMPSCBuffer(ringCapacity(capacity)), channel.NewMPSCPark())

	start := time.Now()

	done := make(chan error, 1)
	go func() {
		for i := 0; i < count; i++ {
			if _, err := future.BlockOn(sender.Send(i)); err != nil {
				done <- err
				return
			}
		}
		_, err := future.BlockOn(sender.Close())
		done <- err
	}()

	received := 0
	for {
		value, err := future.BlockOn(receiver.Recv())
		if err != nil {
			return err
		}
		if value == future.StreamResultNone {
			break
		}
		received++
	}

	if err := <-done; err != nil {
		return err
	}

	elapsed := time.Since(start)
	cmd.Printf("sent+received %d items in %s (%.0f items/s)\n",
		received, elapsed, float64(received)/elapsed.Seconds())
	return nil
}

func buildBenchSchedCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "sched",
		Short: "Measure task submit/poll throughput on a local scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchSched(cmd, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 100000, "number of tasks to submit")

	return cmd
}

func benchSched(cmd *cobra.Command, count int) error {
	sched := scheduler.NewLocalScheduler()

	start := time.Now()
	for i := 0; i < count; i++ {
		if err := sched.Submit(future.Ready(i)); err != nil {
			return err
		}
	}

	polled := 0
	for polled < count {
		polled += sched.RunOnce()
	}
	sched.Close()

	elapsed := time.Since(start)
	cmd.Printf("submitted+polled %d tasks in %s (%.0f tasks/s)\n",
		polled, elapsed, float64(polled)/elapsed.Seconds())
	return nil
}
