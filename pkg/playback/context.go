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

// Package playback runs a cooperative audio graph: players stream their
// buffers through gain/pan/rate stages into a shared mixer, while analyzer
// taps capture the most recent samples for spectral measurement. A Context
// owns the clock and every node created under it; closing the context
// invalidates them all.
package playback

import (
	"sync"
	"time"

	"github.com/frostbyte73/core"
	"github.com/sirupsen/logrus"

	"github.com/commercetest/audioprobe/pkg/config"
	"github.com/commercetest/audioprobe/pkg/media"
	"github.com/commercetest/audioprobe/pkg/mixer"
	"github.com/commercetest/audioprobe/pkg/stats"
)

type State int

const (
	StateRunning = State(iota)
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Context owns the pump goroutine and all players created under it.
// It must be closed when no longer needed; Close is idempotent.
type Context struct {
	conf *config.Config
	log  *logrus.Entry
	mon  *stats.Monitor

	mu      sync.Mutex
	state   State
	players map[*Player]struct{}
	master  float64

	mix    *mixer.Mixer
	sink   switchWriter
	closed core.Fuse
}

// NewContext starts the playback clock. The monitor may be nil.
func NewContext(conf *config.Config, mon *stats.Monitor) *Context {
	c := &Context{
		conf:    conf,
		log:     conf.Logger().WithField("component", "playback"),
		mon:     mon,
		players: make(map[*Player]struct{}),
		master:  1.0,
	}
	c.sink.rate = conf.SampleRate
	c.mix = mixer.New(&c.sink, conf.FrameSize())

	go c.pump()
	return c
}

// SampleRate returns the context sample rate in Hz.
func (c *Context) SampleRate() int {
	return c.conf.SampleRate
}

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Suspend pauses the clock; players keep their state but no frames flow.
func (c *Context) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StateSuspended
	}
}

// Resume restarts a suspended clock.
func (c *Context) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSuspended {
		c.state = StateRunning
	}
}

// SetMasterVolume scales every player's output. The level is linear;
// it is applied through each player's volume stage.
func (c *Context) SetMasterVolume(level float64) {
	if level < 0 {
		level = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.master = level
	for p := range c.players {
		p.applyMasterLocked(level)
	}
}

func (c *Context) MasterVolume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.master
}

// SetOutput attaches a writer receiving the mixed PCM16 output of all
// players, one frame per tick. Passing nil detaches it.
func (c *Context) SetOutput(w media.PCM16Writer) {
	c.sink.Swap(w)
}

// Close stops the clock and disposes every player. Dependent nodes are
// invalid afterwards; all their operations degrade to documented defaults.
func (c *Context) Close() error {
	c.closed.Once(func() {
		c.mu.Lock()
		c.state = StateClosed
		players := make([]*Player, 0, len(c.players))
		for p := range c.players {
			players = append(players, p)
		}
		c.mu.Unlock()

		for _, p := range players {
			p.Dispose()
		}
		c.log.Debug("context closed")
	})
	return nil
}

func (c *Context) pump() {
	ticker := time.NewTicker(c.conf.FrameDur)
	defer ticker.Stop()
	for {
		select {
		case <-c.closed.Watch():
			return
		case <-ticker.C:
		}
		c.pumpOnce()
	}
}

// pumpOnce pulls one frame from every playing player, feeds analyzer taps
// and the mixer, and flushes the mix to the output sink.
func (c *Context) pumpOnce() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	n := c.conf.FrameSize()
	for p := range c.players {
		p.pullLocked(n)
	}
	c.mu.Unlock()

	if err := c.mix.MixOnce(); err != nil {
		c.log.WithError(err).Warn("mix output failed")
	}
	c.mon.FramesPumped(1)
}

// switchWriter is the context output stage: an atomically swappable PCM16
// writer that discards frames while nothing is attached.
type switchWriter struct {
	mu   sync.Mutex
	rate int
	w    media.PCM16Writer
}

func (s *switchWriter) Swap(w media.PCM16Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func (s *switchWriter) SampleRate() int {
	return s.rate
}

func (s *switchWriter) WriteSample(sample media.PCM16Sample) error {
	s.mu.Lock()
	w := s.w
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.WriteSample(sample)
}
