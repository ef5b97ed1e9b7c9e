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
	"time"

	"github.com/gopxl/beep"

	"github.com/commercetest/audioprobe/pkg/media"
)

// bufferStreamer streams a SampleBuffer as a beep source node. Mono buffers
// play on both channels; for multi-channel buffers the first two channels
// map to left and right.
type bufferStreamer struct {
	buf  *media.SampleBuffer
	pos  int
	loop bool
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	n := s.buf.Samples()
	for i := range samples {
		if s.pos >= n {
			if s.loop && n > 0 {
				s.pos = 0
			} else {
				return i, i > 0
			}
		}
		l := float64(s.buf.Channel(0)[s.pos])
		r := l
		if s.buf.Channels() > 1 {
			r = float64(s.buf.Channel(1)[s.pos])
		}
		samples[i][0] = l
		samples[i][1] = r
		s.pos++
	}
	return len(samples), true
}

func (s *bufferStreamer) Err() error { return nil }

// Streamer returns a beep source node that plays the buffer once. It is
// used to connect a sample buffer to an external speaker chain.
func Streamer(buf *media.SampleBuffer) beep.Streamer {
	return &bufferStreamer{buf: buf}
}

// fader is the per-player volume stage. It applies a linear gain and, when
// a fade is requested, ramps the gain sample-by-sample toward the target so
// volume changes are click-free and fade assertions have a real slope to
// measure.
type fader struct {
	s      beep.Streamer
	gain   float64
	target float64
	step   float64
}

// set changes the target level. A zero fade applies immediately.
func (f *fader) set(level float64, fade time.Duration, sampleRate int) {
	f.target = level
	if fade <= 0 || sampleRate <= 0 {
		f.gain = level
		f.step = 0
		return
	}
	samples := fade.Seconds() * float64(sampleRate)
	if samples < 1 {
		samples = 1
	}
	f.step = (level - f.gain) / samples
}

func (f *fader) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.s.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= f.gain
		samples[i][1] *= f.gain
		if f.step != 0 {
			f.gain += f.step
			if (f.step > 0 && f.gain >= f.target) || (f.step < 0 && f.gain <= f.target) {
				f.gain = f.target
				f.step = 0
			}
		}
	}
	return n, ok
}

func (f *fader) Err() error { return f.s.Err() }
