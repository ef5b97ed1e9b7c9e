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
	"github.com/commercetest/audioprobe/pkg/internal/ringbuf"
	"github.com/commercetest/audioprobe/pkg/spectral"
)

// Byte magnitude mapping range, dB. Matches the common analyser-node
// convention: minDb maps to 0, maxDb to 255.
const (
	byteMinDb = -100.0
	byteMaxDb = -30.0
)

// Analyzer taps a player's output stream and derives frequency-domain
// snapshots from the most recent window of samples.
type Analyzer struct {
	an  *spectral.Analyzer
	tap *ringbuf.Buffer[float64]
}

// FFTSize returns the analysis window size in samples.
func (a *Analyzer) FFTSize() int {
	return a.an.FFTSize()
}

// AttachAnalyzer creates an analyzer tap on the player's output using the
// context FFT size. It reports whether an analyzer is attached afterwards;
// attaching twice keeps the existing tap. A player without a sound resource
// cannot be analyzed.
func (p *Player) AttachAnalyzer() bool {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if !p.hasSound() {
		return false
	}
	if p.an != nil {
		return true
	}
	fftSize := p.ctx.conf.FFTSize
	p.an = &Analyzer{
		an: spectral.New(fftSize, p.ctx.conf.SampleRate),
		// Twice the window so a fresh transform never races its own tail.
		tap: ringbuf.New[float64](fftSize * 2),
	}
	return true
}

// Analyzer returns the attached analyzer handle, or nil.
func (p *Player) Analyzer() *Analyzer {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.an
}

// FrequencyData transforms the most recent window of played samples and
// returns per-bin magnitudes in dB. It returns nil when no analyzer is
// attached. Before enough samples have played, the window is zero-padded
// at its head, the same way a real-time analyser reports on a cold start.
func (p *Player) FrequencyData() spectral.Frame {
	p.ctx.mu.Lock()
	if p.an == nil {
		p.ctx.mu.Unlock()
		return nil
	}
	an := p.an.an
	window := make([]float64, an.FFTSize())
	p.an.tap.Tail(window)
	p.ctx.mu.Unlock()

	done := p.ctx.mon.Analysis("transform")
	defer done()
	return an.Transform(window)
}

// ByteFrequencyData returns the frequency data compressed into 0..255
// bytes over the [-100, -30] dB range, or nil when no analyzer is attached.
func (p *Player) ByteFrequencyData() []byte {
	frame := p.FrequencyData()
	if frame == nil {
		return nil
	}
	out := make([]byte, len(frame))
	for i, db := range frame {
		v := 255 * (db - byteMinDb) / (byteMaxDb - byteMinDb)
		if v < 0 || v != v { // NaN guard
			v = 0
		} else if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}
