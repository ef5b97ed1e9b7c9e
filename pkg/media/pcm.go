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
	"encoding/binary"
	"math"
)

// LPCM16Sample is a little-endian, interleaved 16-bit PCM byte stream.
type LPCM16Sample []byte

func (s LPCM16Sample) Decode() PCM16Sample {
	out := make(PCM16Sample, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		out[i/2] = int16(binary.LittleEndian.Uint16(s[i:]))
	}
	return out
}

// PCM16Sample is an interleaved 16-bit PCM sample slice.
type PCM16Sample []int16

func (s PCM16Sample) Encode() LPCM16Sample {
	out := make(LPCM16Sample, len(s)*2)
	for i, v := range s {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

func (s PCM16Sample) Clear() {
	for i := range s {
		s[i] = 0
	}
}

// Float32ToPCM16 clamps v to [-1, 1] and scales it to the signed 16-bit
// range. Clamping first keeps out-of-range floats from wrapping around.
func Float32ToPCM16(v float32) int16 {
	f := float64(v)
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int16(math.Round(f * 32767))
}

// PCM16ToFloat32 maps a 16-bit sample back into [-1, 1].
func PCM16ToFloat32(v int16) float32 {
	return float32(v) / 32767
}
