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

const (
	// DefFrameDur is a default duration of an audio frame.
	DefFrameDur = 20 * time.Millisecond
	// DefFramesPerSec is a default number of audio frames per second.
	DefFramesPerSec = int(time.Second / DefFrameDur)
	// DefSampleRate is the sample rate assumed when none is configured.
	DefSampleRate = 44100
)

type Reader[T any] interface {
	ReadSample(buf T) (int, error)
}

type ReadCloser[T any] interface {
	Reader[T]
	Close() error
}

type Writer[T any] interface {
	SampleRate() int
	WriteSample(sample T) error
}

type WriteCloser[T any] interface {
	Writer[T]
	Close() error
}

type PCM16Writer = Writer[PCM16Sample]

type writerFunc[T any] struct {
	sampleRate int
	fnc        func(in T) error
}

func (w writerFunc[T]) SampleRate() int {
	return w.sampleRate
}

func (w writerFunc[T]) WriteSample(in T) error {
	return w.fnc(in)
}

// WriterFunc adapts a function to a Writer with a given sample rate.
func WriterFunc[T any](sampleRate int, fnc func(in T) error) Writer[T] {
	return writerFunc[T]{sampleRate: sampleRate, fnc: fnc}
}

type writeCloser[T any] struct {
	Writer[T]
}

func (*writeCloser[T]) Close() error {
	return nil
}

func NopCloser[T any](w Writer[T]) WriteCloser[T] {
	return &writeCloser[T]{w}
}
