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

// Package wav serializes sample buffers into the canonical uncompressed
// 16-bit PCM WAV layout: a 44-byte header followed by interleaved
// little-endian samples. Identical buffer content always produces
// byte-identical output.
package wav

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/commercetest/audioprobe/pkg/media"
)

const (
	// HeaderSize is the canonical PCM WAV header length in bytes.
	HeaderSize = 44
	// FormatPCM is the uncompressed PCM format code.
	FormatPCM = 1
	// BitsPerSample is the only sample depth this encoder produces.
	BitsPerSample = 16
)

// Header holds the format fields of a canonical WAV header.
type Header struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// Encode serializes the buffer. Each float sample is clamped to [-1, 1]
// before scaling to int16. A zero-length buffer encodes to exactly the
// 44-byte header.
func Encode(buf *media.SampleBuffer) []byte {
	pcm := buf.ToPCM16()
	out := make([]byte, HeaderSize+2*len(pcm))
	writeHeader(out, buf.SampleRate(), buf.Channels(), uint32(2*len(pcm)))
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(out[HeaderSize+2*i:], uint16(v))
	}
	return out
}

// EncodeTo writes the serialized buffer to w.
func EncodeTo(w io.Writer, buf *media.SampleBuffer) error {
	if _, err := w.Write(Encode(buf)); err != nil {
		return errors.Wrap(err, "wav: write")
	}
	return nil
}

func writeHeader(dst []byte, sampleRate, channels int, dataSize uint32) {
	le := binary.LittleEndian
	copy(dst[0:4], "RIFF")
	le.PutUint32(dst[4:], 36+dataSize)
	copy(dst[8:12], "WAVE")
	copy(dst[12:16], "fmt ")
	le.PutUint32(dst[16:], 16) // fmt subchunk size
	le.PutUint16(dst[20:], FormatPCM)
	le.PutUint16(dst[22:], uint16(channels))
	le.PutUint32(dst[24:], uint32(sampleRate))
	le.PutUint32(dst[28:], uint32(sampleRate*channels*BitsPerSample/8))
	le.PutUint16(dst[32:], uint16(channels*BitsPerSample/8))
	le.PutUint16(dst[34:], BitsPerSample)
	copy(dst[36:40], "data")
	le.PutUint32(dst[40:], dataSize)
}

// DecodeHeader parses the 44-byte header, verifying the RIFF/WAVE/fmt/data
// tags. It is used for round-trip verification of encoded artifacts.
func DecodeHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, errors.Errorf("wav: short header: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return h, errors.New("wav: missing RIFF tag")
	}
	if string(data[8:12]) != "WAVE" {
		return h, errors.New("wav: missing WAVE tag")
	}
	if string(data[12:16]) != "fmt " {
		return h, errors.New("wav: missing fmt subchunk")
	}
	if string(data[36:40]) != "data" {
		return h, errors.New("wav: missing data subchunk")
	}
	le := binary.LittleEndian
	h.AudioFormat = le.Uint16(data[20:])
	h.Channels = le.Uint16(data[22:])
	h.SampleRate = le.Uint32(data[24:])
	h.ByteRate = le.Uint32(data[28:])
	h.BlockAlign = le.Uint16(data[32:])
	h.BitsPerSample = le.Uint16(data[34:])
	h.DataSize = le.Uint32(data[40:])
	// Callers divide by these; a malformed header must fail here, not there.
	if h.Channels < 1 {
		return h, errors.Errorf("wav: invalid channel count: %d", h.Channels)
	}
	if h.BitsPerSample != BitsPerSample {
		return h, errors.Errorf("wav: unsupported bits per sample: %d", h.BitsPerSample)
	}
	return h, nil
}

// DecodeSamples parses the data section into interleaved PCM16 samples.
func DecodeSamples(data []byte) (media.PCM16Sample, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[HeaderSize:]
	if uint32(len(body)) < h.DataSize {
		return nil, errors.Errorf("wav: truncated data: want %d bytes, have %d", h.DataSize, len(body))
	}
	return media.LPCM16Sample(body[:h.DataSize]).Decode(), nil
}
