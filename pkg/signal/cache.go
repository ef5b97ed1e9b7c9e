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

package signal

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/commercetest/audioprobe/pkg/media"
)

const cacheSize = 128

// Test suites regenerate the same few reference tones over and over, so
// plain tones are cached by their full parameter tuple. Cached buffers are
// shared; SampleBuffer immutability makes that safe. A NaN frequency never
// matches its own key and simply bypasses the cache.
var toneCache, _ = lru.New[toneKey, *media.SampleBuffer](cacheSize)

type toneKey struct {
	rate int
	freq float64
	dur  time.Duration
	amp  float64
	ch   int
}

func cacheGet(rate int, freq float64, dur time.Duration, o options) *media.SampleBuffer {
	buf, ok := toneCache.Get(toneKey{rate, freq, dur, o.amplitude, o.channels})
	if !ok {
		return nil
	}
	return buf
}

func cachePut(rate int, freq float64, dur time.Duration, o options, buf *media.SampleBuffer) {
	toneCache.Add(toneKey{rate, freq, dur, o.amplitude, o.channels}, buf)
}
