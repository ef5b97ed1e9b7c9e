// Copyright 2025 Audioprobe Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"errors"
	"time"

	"github.com/frostbyte73/core"
	"github.com/prometheus/client_golang/prometheus"
)

// durBucketsAnalysis lists histogram buckets (seconds) for single FFT
// analysis passes.
var durBucketsAnalysis = []float64{
	0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

type Monitor struct {
	buffersGenerated prometheus.Counter
	framesPumped     prometheus.Counter
	playersActive    prometheus.Gauge
	analyses         *prometheus.CounterVec
	durAnalysis      prometheus.Histogram

	metrics  []prometheus.Collector
	started  core.Fuse
	shutdown core.Fuse
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func mustRegister[T prometheus.Collector](m *Monitor, c T) T {
	err := prometheus.Register(c)
	if err != nil {
		var e prometheus.AlreadyRegisteredError
		if errors.As(err, &e) {
			return e.ExistingCollector.(T)
		}
		panic(err)
	}
	m.metrics = append(m.metrics, c)
	return c
}

func (m *Monitor) Start() error {
	m.buffersGenerated = mustRegister(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "audioprobe",
		Subsystem: "signal",
		Name:      "buffers_generated",
		Help:      "Number of sample buffers generated",
	}))

	m.framesPumped = mustRegister(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "audioprobe",
		Subsystem: "playback",
		Name:      "frames_pumped",
		Help:      "Number of audio frames pulled through the playback graph",
	}))

	m.playersActive = mustRegister(m, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "audioprobe",
		Subsystem: "playback",
		Name:      "players_active",
		Help:      "Number of players currently playing",
	}))

	m.analyses = mustRegister(m, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audioprobe",
		Subsystem: "spectral",
		Name:      "analyses",
		Help:      "Number of spectral analyses run",
	}, []string{"op"}))

	m.durAnalysis = mustRegister(m, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "audioprobe",
		Subsystem: "spectral",
		Name:      "dur_analysis_sec",
		Help:      "Duration of a single spectral analysis pass",
		Buckets:   durBucketsAnalysis,
	}))

	m.started.Break()
	return nil
}

func (m *Monitor) Shutdown() {
	m.shutdown.Break()
}

func (m *Monitor) Stop() {
	for _, c := range m.metrics {
		prometheus.Unregister(c)
	}
	m.metrics = nil
}

func (m *Monitor) active() bool {
	return m != nil && m.started.IsBroken() && !m.shutdown.IsBroken()
}

func (m *Monitor) BufferGenerated() {
	if m.active() {
		m.buffersGenerated.Inc()
	}
}

func (m *Monitor) FramesPumped(n int) {
	if m.active() {
		m.framesPumped.Add(float64(n))
	}
}

func (m *Monitor) PlayerStarted() {
	if m.active() {
		m.playersActive.Inc()
	}
}

func (m *Monitor) PlayerStopped() {
	if m.active() {
		m.playersActive.Dec()
	}
}

func (m *Monitor) Analysis(op string) func() time.Duration {
	if !m.active() {
		return func() time.Duration { return 0 }
	}
	m.analyses.WithLabelValues(op).Inc()
	return prometheus.NewTimer(m.durAnalysis).ObserveDuration
}
