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

// Package signal produces deterministic sample buffers for known signal
// shapes. Generation never fails: degenerate numeric input (zero, negative,
// ultrasonic or non-finite frequency) is fed through the sine formula as-is,
// and a non-positive duration yields a zero-length buffer.
package signal

import (
	"math"
	"time"

	"github.com/commercetest/audioprobe/pkg/media"
)

type options struct {
	amplitude float64
	channels  int
}

type Option func(*options)

// WithAmplitude sets the peak amplitude. Values above 1.0 are legal and
// produce samples that clip at encode time.
func WithAmplitude(a float64) Option {
	return func(o *options) {
		o.amplitude = a
	}
}

// WithChannels sets the channel count. All channels carry identical samples.
func WithChannels(n int) Option {
	return func(o *options) {
		o.channels = n
	}
}

func buildOptions(opts []Option) options {
	o := options{amplitude: 1.0, channels: 1}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func sampleCount(sampleRate int, dur time.Duration) int {
	if dur <= 0 {
		return 0
	}
	return int(math.Round(dur.Seconds() * float64(sampleRate)))
}

// GenerateTone produces a sine tone where sample i equals
// amplitude * sin(2*pi*freq*i/sampleRate) on every channel.
// Math is done in float64 and narrowed to float32 per sample.
func GenerateTone(sampleRate int, freq float64, dur time.Duration, opts ...Option) *media.SampleBuffer {
	o := buildOptions(opts)
	if buf := cacheGet(sampleRate, freq, dur, o); buf != nil {
		return buf
	}
	n := sampleCount(sampleRate, dur)
	buf := media.NewSampleBuffer(sampleRate, o.channels, n)
	for i := 0; i < n; i++ {
		v := float32(o.amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for c := 0; c < buf.Channels(); c++ {
			buf.Channel(c)[i] = v
		}
	}
	cachePut(sampleRate, freq, dur, o, buf)
	return buf
}

// GenerateSilence produces a buffer of exact zeros.
func GenerateSilence(sampleRate int, dur time.Duration, opts ...Option) *media.SampleBuffer {
	o := buildOptions(opts)
	return media.NewSampleBuffer(sampleRate, o.channels, sampleCount(sampleRate, dur))
}

// Wave is one component of a multi-tone signal.
type Wave struct {
	Freq float64
	Amp  float64
}

// GenerateMulti produces a sum of sine components. Amplitudes are not
// normalized; callers that need a non-clipping signal keep the sum of
// amplitudes at or below 1.
func GenerateMulti(sampleRate int, dur time.Duration, waves []Wave, opts ...Option) *media.SampleBuffer {
	o := buildOptions(opts)
	n := sampleCount(sampleRate, dur)
	buf := media.NewSampleBuffer(sampleRate, o.channels, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, w := range waves {
			sum += w.Amp * math.Sin(2*math.Pi*w.Freq*float64(i)/float64(sampleRate))
		}
		v := float32(o.amplitude * sum)
		for c := 0; c < buf.Channels(); c++ {
			buf.Channel(c)[i] = v
		}
	}
	return buf
}
