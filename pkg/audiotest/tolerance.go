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

package audiotest

import (
	"math"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/commercetest/audioprobe/pkg/media"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	require.TestingT
	Helper()
}

// RequireWithinPct asserts that got deviates from expected by at most pct
// percent. Detected values (frequencies, levels) are never compared exactly:
// headless timing and FFT bin quantization both shift them.
func RequireWithinPct(t TB, expected, got, pct float64, msgAndArgs ...any) {
	t.Helper()
	require.InEpsilon(t, expected, got, pct/100, msgAndArgs...)
}

// RequireEventually retries probe with a fixed delay until it reports true,
// failing after the given number of attempts. This is the any-pass rule for
// measurements of a continuously evolving signal.
func RequireEventually(t TB, attempts int, delay time.Duration, probe func() bool, msgAndArgs ...any) {
	t.Helper()
	for i := 0; i < attempts; i++ {
		if probe() {
			return
		}
		time.Sleep(delay)
	}
	require.Fail(t, "condition never held", msgAndArgs...)
}

// RequireIncreasing asserts a strictly increasing sequence: the directional
// form of an assertion, used where absolute values are timing-dependent but
// their ordering is not (higher gain must mean higher RMS).
func RequireIncreasing(t TB, values []float64, msgAndArgs ...any) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		require.Greater(t, values[i], values[i-1], msgAndArgs...)
	}
}

// CountClipped returns how many samples of the buffer sit at or above the
// given absolute level, along with the total sample count.
func CountClipped(buf *media.SampleBuffer, level float32) (clipped, total int) {
	for c := 0; c < buf.Channels(); c++ {
		for _, v := range buf.Channel(c) {
			total++
			if float32(math.Abs(float64(v))) >= level {
				clipped++
			}
		}
	}
	return clipped, total
}

// ClippedFraction returns the fraction of samples at or above the level.
func ClippedFraction(buf *media.SampleBuffer, level float32) float64 {
	clipped, total := CountClipped(buf, level)
	if total == 0 {
		return 0
	}
	return float64(clipped) / float64(total)
}
