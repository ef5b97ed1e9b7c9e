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

// Package mixer combines several PCM16 frame streams into one. It does not
// own a clock: the playback pump calls MixOnce per frame tick.
package mixer

import (
	"container/list"
	"sync"

	"github.com/commercetest/audioprobe/pkg/media"
)

// defaultBufferSize is the number of frames an input must queue before it
// joins the mix, absorbing producer jitter.
const defaultBufferSize = 2

type Input struct {
	mu        sync.Mutex
	frames    list.List // of media.PCM16Sample
	buffering bool

	bufferSize int
	mixSize    int
	rate       int
}

type Mixer struct {
	mu sync.Mutex

	out     media.PCM16Writer
	inputs  map[*Input]struct{}
	mixSize int
}

// New creates a mixer producing frames of mixSize samples into out.
func New(out media.PCM16Writer, mixSize int) *Mixer {
	return &Mixer{
		out:     out,
		mixSize: mixSize,
		inputs:  make(map[*Input]struct{}),
	}
}

func (m *Mixer) NewInput() *Input {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := &Input{
		buffering:  true,
		bufferSize: defaultBufferSize,
		mixSize:    m.mixSize,
		rate:       m.out.SampleRate(),
	}
	m.inputs[i] = struct{}{}
	return i
}

func (m *Mixer) RemoveInput(i *Input) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inputs, i)
}

// MixOnce mixes one frame from every ready input and writes it out.
// With no ready inputs it writes silence, keeping the output clocked.
func (m *Mixer) MixOnce() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixOnce()
}

func (m *Mixer) mixOnce() error {
	mixed := make([]int32, m.mixSize)
	for input := range m.inputs {
		input.take(mixed)
	}
	out := make(media.PCM16Sample, m.mixSize)
	for i, v := range mixed {
		// Summing can overflow int16; clamp instead of dividing by the
		// input count, which would drop the volume as inputs join.
		if v > 0x7FFF {
			v = 0x7FFF
		} else if v < -0x7FFF {
			v = -0x7FFF
		}
		out[i] = int16(v)
	}
	return m.out.WriteSample(out)
}

func (i *Input) SampleRate() int {
	return i.rate
}

// WriteSample queues one frame. Frames shorter than the mix size are
// zero-padded.
func (i *Input) WriteSample(s media.PCM16Sample) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	frame := make(media.PCM16Sample, i.mixSize)
	copy(frame, s)
	i.frames.PushBack(frame)

	if i.frames.Len() >= i.bufferSize {
		i.buffering = false
	}
	return nil
}

func (i *Input) take(mixed []int32) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.buffering || i.frames.Len() == 0 {
		return
	}
	front := i.frames.Remove(i.frames.Front()).(media.PCM16Sample)
	for j := range mixed {
		mixed[j] += int32(front[j])
	}
}
