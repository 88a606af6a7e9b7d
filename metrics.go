// Copyright 2026 The Govisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package govinit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for a supervisor.  A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	spawns        *prometheus.CounterVec
	spawnFailures *prometheus.CounterVec
	reaps         *prometheus.CounterVec
	running       *prometheus.GaugeVec
	orphans       prometheus.Counter
	interval      prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the collectors, registered in a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "govinit"
	}
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.spawns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawns_total",
			Help:      "Processes started, per entry",
		},
		[]string{"name"},
	)
	m.spawnFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawn_failures_total",
			Help:      "Failed attempts to create a process, per entry",
		},
		[]string{"name"},
	)
	m.reaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaps_total",
			Help:      "Supervised processes reaped, per entry",
		},
		[]string{"name"},
	)
	m.running = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while the entry has a live process",
		},
		[]string{"name"},
	)
	m.orphans = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_reaped_total",
			Help:      "Reaped processes that belonged to no entry",
		},
	)
	m.interval = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_interval_seconds",
			Help:      "Current supervision poll interval",
		},
	)

	m.registry.MustRegister(
		m.spawns,
		m.spawnFailures,
		m.reaps,
		m.running,
		m.orphans,
		m.interval,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Spawned(name string) {
	if m == nil {
		return
	}
	m.spawns.WithLabelValues(name).Inc()
	m.running.WithLabelValues(name).Set(1)
}

func (m *Metrics) SpawnFailed(name string) {
	if m == nil {
		return
	}
	m.spawnFailures.WithLabelValues(name).Inc()
}

func (m *Metrics) Reaped(name string) {
	if m == nil {
		return
	}
	m.reaps.WithLabelValues(name).Inc()
	m.running.WithLabelValues(name).Set(0)
}

func (m *Metrics) OrphanReaped() {
	if m == nil {
		return
	}
	m.orphans.Inc()
}

func (m *Metrics) Interval(d time.Duration) {
	if m == nil {
		return
	}
	m.interval.Set(d.Seconds())
}
