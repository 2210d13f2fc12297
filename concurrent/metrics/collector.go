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

// Package metrics exposes the runtime's internal state to Prometheus: ready-queue depth, task
// completions, channel backpressure events, and waker signal counts. Collector itself holds the
// counters/gauges; SchedulerObserver and ChannelObserver are thin adapters satisfying
// scheduler.Observer and channel.Observer respectively, since both interfaces declare an OnClosed
// method that needs to land on two different counters.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botobag/asyncrt/concurrent/channel"
	"github.com/botobag/asyncrt/concurrent/scheduler"
)

// Collector collects Prometheus metrics for one or more schedulers and channels. A single process
// normally holds one Collector and installs its SchedulerObserver/ChannelObserver on every
// scheduler/channel it wants instrumented; per-component breakdowns belong in labels on the
// caller's own dashboards, not in separate Collector instances, since Prometheus metrics may only
// be registered once per process.
type Collector struct {
	tasksEnqueued   prometheus.Counter
	tasksCompleted  prometheus.Counter
	schedulerClosed prometheus.Counter
	readyQueueDepth prometheus.Gauge

	channelBackpressure prometheus.Counter
	wakerSignals        prometheus.Counter
	channelClosed       prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with prometheus.DefaultRegisterer.
// Creating a second Collector in the same process panics on the duplicate registration, the same
// as any other Prometheus collector -- callers should create exactly one.
func NewCollector() *Collector {
	c := &Collector{
		tasksEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asyncrt_tasks_enqueued_total",
			Help: "Total number of tasks submitted to a scheduler.",
		}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asyncrt_tasks_completed_total",
			Help: "Total number of tasks whose future resolved to a value or error.",
		}),
		schedulerClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asyncrt_scheduler_closed_total",
			Help: "Total number of schedulers that have been closed.",
		}),
		readyQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asyncrt_ready_queue_depth",
			Help: "Most recently sampled length of a scheduler's ready queue.",
		}),
		channelBackpressure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asyncrt_channel_backpressure_total",
			Help: "Total number of sends rejected because a bounded channel buffer was full.",
		}),
		wakerSignals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asyncrt_channel_waker_signals_total",
			Help: "Total number of wake signals a channel issued to its parked sender or receiver.",
		}),
		channelClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asyncrt_channel_closed_total",
			Help: "Total number of channels that have been closed.",
		}),
	}

	prometheus.MustRegister(c.tasksEnqueued)
	prometheus.MustRegister(c.tasksCompleted)
	prometheus.MustRegister(c.schedulerClosed)
	prometheus.MustRegister(c.readyQueueDepth)
	prometheus.MustRegister(c.channelBackpressure)
	prometheus.MustRegister(c.wakerSignals)
	prometheus.MustRegister(c.channelClosed)

	return c
}

// SetReadyQueueDepth records a freshly sampled ready-queue length. Callers poll
// scheduler.LocalScheduler.Len (or an equivalent depth accessor) on their own cadence and report
// it here; Collector never samples on its own, keeping it off the scheduler's hot poll path
// entirely.
func (c *Collector) SetReadyQueueDepth(depth int) {
	c.readyQueueDepth.Set(float64(depth))
}

// SchedulerObserver returns a scheduler.Observer reporting into c.
func (c *Collector) SchedulerObserver() scheduler.Observer {
	return schedulerObserver{c: c}
}

// ChannelObserver returns a channel.Observer reporting into c.
func (c *Collector) ChannelObserver() channel.Observer {
	return channelObserver{c: c}
}

type schedulerObserver struct {
	c *Collector
}

func (o schedulerObserver) OnTaskEnqueued()  { o.c.tasksEnqueued.Inc() }
func (o schedulerObserver) OnTaskCompleted() { o.c.tasksCompleted.Inc() }
func (o schedulerObserver) OnClosed()        { o.c.schedulerClosed.Inc() }

type channelObserver struct {
	c *Collector
}

func (o channelObserver) OnBackpressure() { o.c.channelBackpressure.Inc() }
func (o channelObserver) OnWakerSignal()  { o.c.wakerSignals.Inc() }
func (o channelObserver) OnClosed()       { o.c.channelClosed.Inc() }

var (
	_ scheduler.Observer = schedulerObserver{}
	_ channel.Observer   = channelObserver{}
)

// StartServer starts a Prometheus metrics HTTP server on the given port, serving the default
// registry at /metrics.
func StartServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}
