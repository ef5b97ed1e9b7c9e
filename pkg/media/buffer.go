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

package media

import (
	"time"
)

// SampleBuffer holds per-channel float32 sample data at a fixed sample rate.
// All channels are the same length. Buffers are treated as immutable once
// produced; components that need to change sample data make a copy first.
type SampleBuffer struct {
	channels [][]float32
	rate     int
}

// NewSampleBuffer allocates a zeroed buffer. Channel count below 1 is raised
// to 1, negative sample counts are treated as zero.
func NewSampleBuffer(sampleRate, channels, samples int) *SampleBuffer {
	if channels < 1 {
		channels = 1
	}
	if samples < 0 {
		samples = 0
	}
	ch := make([][]float32, channels)
	for i := range ch {
		ch[i] = make([]float32, samples)
	}
	return &SampleBuffer{channels: ch, rate: sampleRate}
}

func (b *SampleBuffer) SampleRate() int {
	if b == nil {
		return 0
	}
	return b.rate
}

// Channels returns the channel count.
func (b *SampleBuffer) Channels() int {
	if b == nil {
		return 0
	}
	return len(b.channels)
}

// Samples returns the per-channel sample count.
func (b *SampleBuffer) Samples() int {
	if b == nil || len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the sample slice for channel i. The caller must not
// modify it.
func (b *SampleBuffer) Channel(i int) []float32 {
	return b.channels[i]
}

func (b *SampleBuffer) Duration() time.Duration {
	if b.SampleRate() <= 0 {
		return 0
	}
	return time.Duration(b.Samples()) * time.Second / time.Duration(b.rate)
}

// Interleaved returns samples interleaved across channels
// (frame 0 of every channel, then frame 1, ...).
func (b *SampleBuffer) Interleaved() []float32 {
	n, ch := b.Samples(), b.Channels()
	out := make([]float32, n*ch)
	for i := 0; i < n; i++ {
		for c := 0; c < ch; c++ {
			out[i*ch+c] = b.channels[c][i]
		}
	}
	return out
}

// ToPCM16 converts the buffer to interleaved 16-bit PCM, clamping each
// sample to [-1, 1] first.
func (b *SampleBuffer) ToPCM16() PCM16Sample {
	n, ch := b.Samples(), b.Channels()
	out := make(PCM16Sample, n*ch)
	for i := 0; i < n; i++ {
		for c := 0; c < ch; c++ {
			out[i*ch+c] = Float32ToPCM16(b.channels[c][i])
		}
	}
	return out
}

// Mono mixes all channels down to a single float64 sequence by averaging.
// A mono buffer is copied as-is.
func (b *SampleBuffer) Mono() []float64 {
	n, ch := b.Samples(), b.Channels()
	out := make([]float64, n)
	if ch == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(b.channels[c][i])
		}
		out[i] = sum / float64(ch)
	}
	return out
}
