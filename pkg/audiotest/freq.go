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

// Package audiotest holds the assertion conventions for verifying audio:
// relative tolerance windows, repeated any-pass sampling, directional
// checks, and a multi-tone marker signal that survives a lossy path and can
// be recovered by FFT.
package audiotest

import (
	"math"
	"math/cmplx"
	"slices"

	"github.com/mjibson/go-dsp/fft"

	"github.com/commercetest/audioprobe/pkg/media"
)

// Wave is one component of a marker signal. Ind selects a frequency of
// 2^Ind cycles over the buffer, so components stay on exact FFT bins and
// survive round-trips regardless of the buffer's sample rate.
type Wave struct {
	Ind int
	Amp int
}

// GenSignal writes a sum of marker waves into dst.
func GenSignal(dst media.PCM16Sample, waves []Wave) {
	for i := range dst {
		ifl := float64(i) / float64(len(dst))
		var v float64
		for _, w := range waves {
			v += float64(w.Amp) * math.Sin(ifl*2*math.Pi*(float64(int(1)<<w.Ind)))
		}
		dst[i] = int16(v)
	}
}

// FindSignal recovers marker waves from a signal, strongest first.
// Components with amplitude below 1 are noise and are dropped.
func FindSignal(src media.PCM16Sample) []Wave {
	cmp := make([]complex128, len(src))
	for i, v := range src {
		cmp[i] = complex(float64(v), 0)
	}
	out := fft.FFT(cmp)
	var waves []Wave
	for i, v := range out[:len(out)/2] {
		if i == 0 {
			continue // DC
		}
		a := 2 * cmplx.Abs(v) / float64(len(src))
		if a < 1 {
			continue
		}
		fi := int(math.Log2(float64(i)))
		waves = append(waves, Wave{Ind: fi, Amp: int(math.Round(a + 0.5))})
	}
	slices.SortFunc(waves, func(a, b Wave) int {
		return b.Amp - a.Amp
	})
	return waves
}
