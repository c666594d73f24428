/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package sched

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional set of gauges/counters a caller can register with
// a prometheus.Registerer to observe scheduler health: how deep the
// processing queue is running and how transactions are finishing.
// Wiring this is opt-in (WithMetrics) — a Scheduler built without it pays
// no prometheus overhead, matching the spec's "no forced observability
// layer" stance while still letting a caller get it the way the teacher's
// services do.
type Metrics struct {
	queueDepth  prometheus.Gauge
	outcomeCtr  *prometheus.CounterVec
	inFlightSet prometheus.Gauge
}

// NewMetrics builds and registers the scheduler's gauges/counters under
// namespace/subsystem, in the same registration style the teacher uses
// elsewhere for its prometheus collectors.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Number of events waiting to be stepped by the scheduler worker.",
		}),
		outcomeCtr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transaction_outcomes_total",
			Help:      "Count of finished transactions by outcome code.",
		}, []string{"outcome"}),
		inFlightSet: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight_timers",
			Help:      "Number of contexts currently armed with a pending timeout.",
		}),
	}
	reg.MustRegister(m.queueDepth, m.outcomeCtr, m.inFlightSet)
	return m
}

// WithMetrics attaches m to s; subsequent Step/rearm/clearTimer calls
// update it. Safe to call once before Run.
func (s *Scheduler) WithMetrics(m *Metrics) *Scheduler {
	s.metrics = m
	return s
}
