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
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/commercetest/audioprobe/pkg/media"
	"github.com/commercetest/audioprobe/pkg/spectral"
)

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// ToleranceConfig carries the default tolerance conventions for assertions
// against detected (non mathematically exact) values.
type ToleranceConfig struct {
	// FreqPct is the relative window for frequency detection, in percent.
	FreqPct float64 `yaml:"freq_pct"`
	// SilenceDb is the magnitude below which a bin counts as silent.
	SilenceDb float64 `yaml:"silence_db"`
	// PresenceDb is the magnitude above which a frequency counts as present.
	PresenceDb float64 `yaml:"presence_db"`
}

type Config struct {
	SampleRate  int           `yaml:"sample_rate"`
	FFTSize     int           `yaml:"fft_size"`
	FrameDur    time.Duration `yaml:"frame_dur"`
	ArtifactDir string        `yaml:"artifact_dir"` // env AUDIOPROBE_ARTIFACT_DIR

	Tolerance ToleranceConfig `yaml:"tolerance"`
	Logging   LoggingConfig   `yaml:"logging"`

	// internal
	ServiceName string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		SampleRate:  media.DefSampleRate,
		FFTSize:     spectral.DefFFTSize,
		FrameDur:    media.DefFrameDur,
		ArtifactDir: os.Getenv("AUDIOPROBE_ARTIFACT_DIR"),
		Tolerance: ToleranceConfig{
			FreqPct:    30,
			SilenceDb:  -100,
			PresenceDb: -60,
		},
		Logging:     LoggingConfig{Level: "info"},
		ServiceName: "audioprobe",
	}
}

func NewConfig(confString string) (*Config, error) {
	conf := Default()
	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, errors.Wrap(err, "could not parse config")
		}
	}
	if conf.SampleRate <= 0 {
		return nil, errors.Errorf("invalid sample rate: %d", conf.SampleRate)
	}
	if conf.FrameDur <= 0 {
		conf.FrameDur = media.DefFrameDur
	}
	return conf, nil
}

func (c *Config) Init() error {
	return c.InitLogger()
}

func (c *Config) InitLogger() error {
	lvl, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logrus.SetLevel(lvl)
	if c.Logging.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Logger returns the process logger tagged with the service name.
func (c *Config) Logger() *logrus.Entry {
	return logrus.WithField("logger", c.ServiceName)
}

// FrameSize returns the number of samples in one pump frame.
func (c *Config) FrameSize() int {
	return int(time.Duration(c.SampleRate) * c.FrameDur / time.Second)
}
