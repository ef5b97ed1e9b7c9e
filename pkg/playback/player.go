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

package playback

import (
	"math"
	"time"

	"github.com/frostbyte73/core"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/commercetest/audioprobe/pkg/media"
	"github.com/commercetest/audioprobe/pkg/mixer"
)

type PlayState int

const (
	PlayIdle = PlayState(iota)
	Playing
	Paused
)

const resampleQuality = 4

// Player is a facade over one sound in the graph:
// source -> rate -> fade -> master volume -> pan -> pause control.
// Every accessor is safe to call before a sound resource exists and after
// Dispose; they return documented defaults instead of failing.
type Player struct {
	ctx *Context

	// nil for a player without a sound resource; the whole surface then
	// degrades to defaults.
	buf *media.SampleBuffer

	src    *bufferStreamer
	rate   *beep.Resampler
	fade   *fader
	vol    *effects.Volume
	pan    *effects.Pan
	ctrl   *beep.Ctrl
	input  *mixer.Input
	an     *Analyzer
	scr    [][2]float64
	frame  media.PCM16Sample

	state    PlayState
	level    float64
	speed    float64
	disposed core.Fuse
	release  func()
}

// NewPlayer creates a player for buf under this context. A nil buffer
// creates a resourceless player whose accessors return defaults. Creating a
// player under a closed context yields a resourceless player as well.
func (c *Context) NewPlayer(buf *media.SampleBuffer) *Player {
	p := &Player{ctx: c, level: 0, speed: 1.0}

	c.mu.Lock()
	defer c.mu.Unlock()
	if buf == nil || c.state == StateClosed {
		return p
	}

	p.buf = buf
	p.level = 1.0
	p.src = &bufferStreamer{buf: buf}
	p.rate = beep.ResampleRatio(resampleQuality, 1.0, p.src)
	p.fade = &fader{s: p.rate, gain: 1.0, target: 1.0}
	p.vol = &effects.Volume{Streamer: p.fade, Base: 2}
	p.pan = &effects.Pan{Streamer: p.vol, Pan: 0}
	p.ctrl = &beep.Ctrl{Streamer: p.pan}
	p.applyMasterLocked(c.master)

	p.input = c.mix.NewInput()
	c.players[p] = struct{}{}
	return p
}

// OnRelease registers a callback invoked exactly once when the player's
// underlying resources are released, no matter how many times Dispose runs.
func (p *Player) OnRelease(fn func()) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.release = fn
}

func (p *Player) hasSound() bool {
	return p.buf != nil && !p.disposed.IsBroken()
}

// SampleRate returns the sound's sample rate, or 44100 without one.
func (p *Player) SampleRate() int {
	if p.buf == nil {
		return media.DefSampleRate
	}
	return p.buf.SampleRate()
}

// Duration returns the sound's length, or 0 without one.
func (p *Player) Duration() time.Duration {
	if !p.hasSound() {
		return 0
	}
	return p.buf.Duration()
}

// CurrentTime returns the source playhead position.
func (p *Player) CurrentTime() time.Duration {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() || p.buf.SampleRate() <= 0 {
		return 0
	}
	return time.Duration(p.src.pos) * time.Second / time.Duration(p.buf.SampleRate())
}

func (p *Player) State() PlayState {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.state
}

// Play starts playback from the beginning, or resumes a paused player.
// It is a no-op without a sound resource or after Dispose.
func (p *Player) Play() {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() || p.ctx.state == StateClosed {
		return
	}
	switch p.state {
	case Playing:
		return
	case Paused:
		p.ctrl.Paused = false
	case PlayIdle:
		p.src.pos = 0
		p.ctrl.Paused = false
		p.ctx.mon.PlayerStarted()
	}
	p.state = Playing
}

// Pause halts playback keeping the playhead position.
func (p *Player) Pause() {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() || p.state != Playing {
		return
	}
	p.ctrl.Paused = true
	p.state = Paused
}

// Stop halts playback and rewinds. Stopping an already stopped player is
// tolerated: the underlying engine rule that double-stop is an error is
// absorbed here to keep cleanup idempotent.
func (p *Player) Stop() {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if !p.hasSound() || p.state == PlayIdle {
		return
	}
	p.ctrl.Paused = false
	p.src.pos = 0
	p.state = PlayIdle
	p.ctx.mon.PlayerStopped()
}

// SetVolume sets the linear volume level, optionally fading to it over the
// given duration. Without a sound resource this is a no-op and Volume keeps
// returning 0.
func (p *Player) SetVolume(level float64, fade ...time.Duration) {
	if level < 0 {
		level = 0
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return
	}
	var d time.Duration
	if len(fade) > 0 {
		d = fade[0]
	}
	p.level = level
	p.fade.set(level, d, p.ctx.conf.SampleRate)
}

// Volume returns the target volume level; 0 without a sound resource.
func (p *Player) Volume() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return 0
	}
	return p.level
}

// SetRate sets the playback rate multiplier. Non-positive rates are ignored.
func (p *Player) SetRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return
	}
	p.speed = rate
	p.rate.SetRatio(rate)
}

// Rate returns the playback rate multiplier; 1.0 by default.
func (p *Player) Rate() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return 1.0
	}
	return p.speed
}

func (p *Player) SetLoop(loop bool) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return
	}
	p.src.loop = loop
}

func (p *Player) Loop() bool {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return false
	}
	return p.src.loop
}

// SetPan positions the sound in the stereo field, -1 (left) to 1 (right).
func (p *Player) SetPan(v float64) {
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return
	}
	p.pan.Pan = v
}

func (p *Player) Pan() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return 0
	}
	return p.pan.Pan
}

func (p *Player) applyMasterLocked(level float64) {
	if p.vol == nil {
		return
	}
	if level <= 0 {
		p.vol.Silent = true
		p.vol.Volume = 0
		return
	}
	p.vol.Silent = false
	p.vol.Volume = math.Log2(level)
}

// Dispose releases the player's graph nodes. It may be called any number of
// times; the underlying release runs exactly once.
func (p *Player) Dispose() {
	p.disposed.Once(func() {
		p.ctx.mu.Lock()
		p.stopLocked()
		if p.input != nil {
			p.ctx.mix.RemoveInput(p.input)
		}
		delete(p.ctx.players, p)
		if p.ctrl != nil {
			p.ctrl.Streamer = nil
		}
		release := p.release
		p.ctx.mu.Unlock()

		if release != nil {
			release()
		}
	})
}

// pullLocked advances the player by n samples: the frame goes to the
// analyzer tap and the context mixer. Called with the context lock held.
func (p *Player) pullLocked(n int) {
	if p.state != Playing || p.disposed.IsBroken() {
		return
	}
	if cap(p.scr) < n {
		p.scr = make([][2]float64, n)
		p.frame = make(media.PCM16Sample, n)
	}
	scr := p.scr[:n]
	for i := range scr {
		scr[i] = [2]float64{}
	}
	m, ok := p.ctrl.Stream(scr)

	frame := p.frame[:n]
	for i := range frame {
		frame[i] = 0
	}
	for i := 0; i < m; i++ {
		mono := (scr[i][0] + scr[i][1]) / 2
		frame[i] = media.Float32ToPCM16(float32(mono))
		if p.an != nil {
			p.an.tap.Push(mono)
		}
	}
	if p.input != nil {
		_ = p.input.WriteSample(frame)
	}
	if !ok {
		// Source drained; the player falls back to idle.
		p.src.pos = p.buf.Samples()
		p.state = PlayIdle
		p.ctx.mon.PlayerStopped()
	}
}
