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

package spectral

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/commercetest/audioprobe/pkg/audiotest"
	"github.com/commercetest/audioprobe/pkg/signal"
)

func toneWindow(rate int, freq float64, amp float64, n int) []float64 {
	buf := signal.GenerateTone(rate, freq, time.Duration(n)*time.Second/time.Duration(rate),
		signal.WithAmplitude(amp))
	return buf.Mono()
}

func TestTransformBins(t *testing.T) {
	an := New(2048, 44100)
	frame := an.Transform(make([]float64, 2048))
	require.Len(t, frame, 1024)
	require.Equal(t, 1024, an.Bins())
	require.InDelta(t, 21.53, an.BinWidth(), 0.01)
	require.Equal(t, 22050.0, an.Nyquist())
}

func TestTransformNeverNaN(t *testing.T) {
	an := New(1024, 8000)
	for _, window := range [][]float64{
		make([]float64, 1024),        // silence
		toneWindow(8000, 440, 1, 64), // short window, zero padded
		toneWindow(8000, 440, 2, 4096),
	} {
		frame := an.Transform(window)
		for i, v := range frame {
			require.False(t, math.IsNaN(v), "bin %d", i)
		}
	}
}

func TestTransformSilenceIsMinusInf(t *testing.T) {
	an := New(1024, 8000)
	frame := an.Transform(make([]float64, 1024))
	for _, v := range frame {
		require.True(t, math.IsInf(v, -1))
	}
}

func TestFindDominantFrequency(t *testing.T) {
	const rate = 44100
	an := New(8192, rate)
	for _, freq := range []float64{110, 440, 1000, 8000} {
		frame := an.Transform(toneWindow(rate, freq, 1, 8192))
		got := an.FindDominantFrequency(frame)
		require.InDelta(t, freq, got, an.BinWidth(), "tone %v Hz", freq)
	}
}

func TestFindDominantFrequencyEdgeCases(t *testing.T) {
	an := New(2048, 44100)

	t.Run("empty frame", func(t *testing.T) {
		require.Equal(t, 0.0, an.FindDominantFrequency(nil))
		require.Equal(t, 0.0, an.FindDominantFrequency(Frame{}))
	})

	t.Run("lowest bin wins ties", func(t *testing.T) {
		frame := Frame{-20, -10, -10, -30}
		require.Equal(t, an.BinFrequency(1), an.FindDominantFrequency(frame))
	})

	t.Run("all equal picks bin zero", func(t *testing.T) {
		frame := Frame{-10, -10, -10}
		require.Equal(t, 0.0, an.FindDominantFrequency(frame))
	})

	t.Run("all minus infinity picks bin zero", func(t *testing.T) {
		inf := math.Inf(-1)
		frame := Frame{inf, inf, inf}
		require.Equal(t, 0.0, an.FindDominantFrequency(frame))
	})
}

func TestHasFrequency(t *testing.T) {
	const rate = 44100
	an := New(8192, rate)
	frame := an.Transform(toneWindow(rate, 440, 1, 8192))

	t.Run("present within tolerance", func(t *testing.T) {
		require.True(t, an.HasFrequency(frame, 440, 50, -30))
	})

	t.Run("absent frequency", func(t *testing.T) {
		require.False(t, an.HasFrequency(frame, 10000, 50, -30))
	})

	t.Run("zero tolerance needs the exact bin", func(t *testing.T) {
		// 440 Hz lands between bins; the exact center of the peak bin
		// must match while 440 itself does not.
		peak := an.FindDominantFrequency(frame)
		require.True(t, an.HasFrequency(frame, peak, 0, -30))
		require.False(t, an.HasFrequency(frame, 440, 0, -30))
	})

	t.Run("negative tolerance never matches", func(t *testing.T) {
		require.False(t, an.HasFrequency(frame, 440, -1, -120))
	})

	t.Run("beyond Nyquist is false", func(t *testing.T) {
		require.False(t, an.HasFrequency(frame, 30000, 1000, -120))
	})

	t.Run("threshold filters weak bins", func(t *testing.T) {
		require.False(t, an.HasFrequency(frame, 440, 50, 10),
			"nothing reaches +10 dB in a unit-amplitude tone")
	})
}

func TestCalculateRMS(t *testing.T) {
	t.Run("empty frame is zero", func(t *testing.T) {
		require.Equal(t, 0.0, CalculateRMS(nil))
		require.Equal(t, 0.0, CalculateRMS(Frame{}))
	})

	t.Run("all minus infinity is exactly zero", func(t *testing.T) {
		inf := math.Inf(-1)
		require.Equal(t, 0.0, CalculateRMS(Frame{inf, inf, inf}))
	})

	t.Run("silent bins contribute nothing", func(t *testing.T) {
		inf := math.Inf(-1)
		mag := math.Pow(10, -60.0/20)
		got := CalculateRMS(Frame{-60, inf, -60, inf})
		require.InEpsilon(t, math.Sqrt(2*mag*mag/4), got, 1e-12)
	})

	t.Run("never NaN or negative", func(t *testing.T) {
		frames := []Frame{
			nil,
			{math.Inf(-1)},
			{math.Inf(1)},
			{math.NaN()},
			{-120, -3, 0},
		}
		for _, f := range frames {
			got := CalculateRMS(f)
			require.False(t, math.IsNaN(got))
			require.GreaterOrEqual(t, got, 0.0)
		}
	})

	t.Run("monotonic in amplitude", func(t *testing.T) {
		an := New(4096, 44100)
		var levels []float64
		for _, amp := range []float64{0.1, 0.25, 0.5, 0.9} {
			levels = append(levels, CalculateRMS(an.Transform(toneWindow(44100, 440, amp, 4096))))
		}
		require.Greater(t, levels[0], 0.0)
		audiotest.RequireIncreasing(t, levels, "higher amplitude means higher RMS")
	})
}

func TestIsSilent(t *testing.T) {
	an := New(1024, 8000)
	silence := an.Transform(make([]float64, 1024))
	tone := an.Transform(toneWindow(8000, 440, 1, 1024))

	t.Run("silence below any threshold", func(t *testing.T) {
		require.True(t, IsSilent(silence, -100))
		require.True(t, IsSilent(silence, -1000))
	})

	t.Run("tone is not silent", func(t *testing.T) {
		require.False(t, IsSilent(tone, -100))
	})

	t.Run("empty frame is silent", func(t *testing.T) {
		require.True(t, IsSilent(nil, -100))
	})

	t.Run("infinite threshold always silent", func(t *testing.T) {
		require.True(t, IsSilent(tone, math.Inf(1)))
		require.True(t, IsSilent(silence, math.Inf(1)))
	})

	t.Run("zero dB frame is loud", func(t *testing.T) {
		require.False(t, IsSilent(Frame{0, 0, 0}, -100))
		require.True(t, IsSilent(Frame{0, 0, 0}, 1))
	})
}

func TestDefaultFFTSize(t *testing.T) {
	an := New(0, 44100)
	require.Equal(t, DefFFTSize, an.FFTSize())
}
