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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	conf, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, 44100, conf.SampleRate)
	require.Equal(t, 2048, conf.FFTSize)
	require.Equal(t, 20*time.Millisecond, conf.FrameDur)
	require.Equal(t, 30.0, conf.Tolerance.FreqPct)
	require.Equal(t, -100.0, conf.Tolerance.SilenceDb)
	require.Equal(t, -60.0, conf.Tolerance.PresenceDb)
	require.Equal(t, "info", conf.Logging.Level)
}

func TestConfigYAML(t *testing.T) {
	conf, err := NewConfig(`
sample_rate: 48000
fft_size: 8192
frame_dur: 10ms
tolerance:
  freq_pct: 10
logging:
  level: debug
`)
	require.NoError(t, err)
	require.Equal(t, 48000, conf.SampleRate)
	require.Equal(t, 8192, conf.FFTSize)
	require.Equal(t, 10*time.Millisecond, conf.FrameDur)
	require.Equal(t, 10.0, conf.Tolerance.FreqPct)
	require.Equal(t, -100.0, conf.Tolerance.SilenceDb, "untouched fields keep defaults")
	require.Equal(t, "debug", conf.Logging.Level)
	require.NoError(t, conf.Init())
}

func TestConfigInvalid(t *testing.T) {
	_, err := NewConfig("sample_rate: -1")
	require.Error(t, err)

	_, err = NewConfig("sample_rate: [")
	require.Error(t, err)
}

func TestConfigFrameDurFallback(t *testing.T) {
	conf, err := NewConfig("frame_dur: -5ms")
	require.NoError(t, err)
	require.Equal(t, 20*time.Millisecond, conf.FrameDur)
}

func TestFrameSize(t *testing.T) {
	conf := Default()
	require.Equal(t, 882, conf.FrameSize())

	conf.SampleRate = 8000
	conf.FrameDur = 10 * time.Millisecond
	require.Equal(t, 80, conf.FrameSize())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	conf := Default()
	conf.Logging.Level = "chatty"
	require.Error(t, conf.InitLogger())
}
