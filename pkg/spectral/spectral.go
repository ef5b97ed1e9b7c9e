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

// Package spectral derives frequency-domain measurements from time-domain
// signal windows. It is a pure function library over snapshots: nothing is
// retained between calls.
package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Frame is an ordered sequence of per-bin magnitudes in decibels.
// Magnitudes may be -Inf (true silence) but never NaN.
type Frame []float64

// Analyzer wraps a windowed FFT of a fixed size. Larger sizes give finer
// frequency resolution at the cost of time resolution: pick 8192-16384 for
// frequency accuracy, 2048 for responsiveness.
type Analyzer struct {
	fftSize    int
	sampleRate int
}

const DefFFTSize = 2048

// New creates an analyzer. fftSize should be a power of two; non-positive
// values fall back to DefFFTSize.
func New(fftSize, sampleRate int) *Analyzer {
	if fftSize <= 0 {
		fftSize = DefFFTSize
	}
	return &Analyzer{fftSize: fftSize, sampleRate: sampleRate}
}

func (a *Analyzer) FFTSize() int {
	return a.fftSize
}

func (a *Analyzer) SampleRate() int {
	return a.sampleRate
}

// Bins returns the number of frequency bins a Transform produces.
func (a *Analyzer) Bins() int {
	return a.fftSize / 2
}

// BinWidth returns the frequency span of one bin in Hz.
func (a *Analyzer) BinWidth() float64 {
	return float64(a.sampleRate) / float64(a.fftSize)
}

// BinFrequency returns the center frequency of bin i.
func (a *Analyzer) BinFrequency(i int) float64 {
	return float64(i) * a.BinWidth()
}

// Nyquist returns the highest representable frequency.
func (a *Analyzer) Nyquist() float64 {
	return float64(a.sampleRate) / 2
}

// Transform runs a Hann-windowed FFT over the sample window and returns
// per-bin magnitudes in dB. Short windows are zero-padded; long windows
// keep only their most recent fftSize samples.
func (a *Analyzer) Transform(samples []float64) Frame {
	if len(samples) > a.fftSize {
		samples = samples[len(samples)-a.fftSize:]
	}
	buf := make([]float64, a.fftSize)
	copy(buf, samples)
	window.Apply(buf, window.Hann)

	out := fft.FFTReal(buf)
	frame := make(Frame, a.fftSize/2)
	for i := range frame {
		mag := 2 * cmplx.Abs(out[i]) / float64(a.fftSize)
		frame[i] = 20 * math.Log10(mag) // mag 0 maps to -Inf, never NaN
	}
	return frame
}

// FindDominantFrequency returns the frequency of the bin with the maximum
// magnitude. The lowest-index bin wins exact ties; an empty frame yields 0.
func (a *Analyzer) FindDominantFrequency(frame Frame) float64 {
	if len(frame) == 0 {
		return 0
	}
	best := 0
	for i, v := range frame {
		if v > frame[best] {
			best = i
		}
	}
	return a.BinFrequency(best)
}

// HasFrequency reports whether any bin within targetHz +/- toleranceHz has
// magnitude at or above thresholdDb. A zero tolerance requires an exact bin
// match, a negative tolerance is an empty window that never matches, and a
// target beyond Nyquist always yields false.
func (a *Analyzer) HasFrequency(frame Frame, targetHz, toleranceHz, thresholdDb float64) bool {
	if toleranceHz < 0 || targetHz > a.Nyquist() {
		return false
	}
	for i, v := range frame {
		f := a.BinFrequency(i)
		if f >= targetHz-toleranceHz && f <= targetHz+toleranceHz && v >= thresholdDb {
			return true
		}
	}
	return false
}

// CalculateRMS returns the root mean square of the frame's linear
// magnitudes. Each dB bin is converted back to a linear magnitude first, so
// the result grows with signal level; -Inf converts to exactly 0 and NaN or
// +Inf entries contribute nothing, keeping the naive formula from turning a
// single bad bin into NaN for the whole frame. The result is never NaN or
// negative; empty and all--Inf frames yield exactly 0.
func CalculateRMS(frame Frame) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		if math.IsNaN(v) || math.IsInf(v, 1) {
			continue
		}
		mag := math.Pow(10, v/20)
		sum += mag * mag
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// IsSilent reports whether every bin's magnitude is strictly below
// thresholdDb. Empty and all--Inf frames are silent; a +Inf threshold
// classifies any finite-or--Inf frame as silent.
func IsSilent(frame Frame, thresholdDb float64) bool {
	for _, v := range frame {
		if !(v < thresholdDb) {
			return false
		}
	}
	return true
}
