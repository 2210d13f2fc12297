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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botobag/asyncrt/concurrent"
	"github.com/botobag/asyncrt/concurrent/channel"
	"github.com/botobag/asyncrt/concurrent/future"
	"github.com/botobag/asyncrt/concurrent/metrics"
)

func buildRunCommand() *cobra.Command {
	var items int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a handful of futures to a thread executor and pipe values through a channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runSystem(cmd, cfg, items)
		},
	}

	cmd.Flags().IntVar(&items, "items", 10, "number of items to pipe through the demo channel")

	return cmd
}

// ringCapacity rounds capacity up to the next power of two, the granularity the ring-backed
// channel buffers require.
func ringCapacity(capacity int) int {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return n
}

func runSystem(cmd *cobra.Command, cfg *Config, items int) error {
	collector := metrics.NewCollector()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				cmd.PrintErrf("metrics server stopped: %v\n", err)
			}
		}()
		cmd.Printf("metrics listening on :%d/metrics\n", cfg.Metrics.Port)
	}

	executor := concurrent.NewThreadExecutor(cfg.Executor.Capacity)

	channelCapacity := cfg.Channel.Capacity
	if channelCapacity <= 0 {
		channelCapacity = 16
	}
	sender, receiver := channel.NewChannel(channel.NewBoundedMPSCBuffer(ringCapacity(channelCapacity)), channel.NewMPSCPark())
	sender.SetObserver(collector.ChannelObserver())

	start := time.Now()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < items; i++ {
			if _, err := future.BlockOn(sender.Send(i)); err != nil {
				cmd.PrintErrf("send %d failed: %v\n", i, err)
				return
			}
		}
		future.BlockOn(sender.Close())
	}()

	received := 0
	for {
		value, err := future.BlockOn(receiver.Recv())
		if err != nil {
			cmd.PrintErrf("receive failed: %v\n", err)
			break
		}
		if value == future.StreamResultNone {
			break
		}
		received++
	}
	<-done

	executor.RunUntil(future.Ready(received))

	cmd.Printf("piped %d items in %s\n", received, time.Since(start))

	if cfg.Metrics.Enabled {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		cmd.Println("metrics server running, press Ctrl+C to stop")
		<-sigCh
	}

	return nil
}
