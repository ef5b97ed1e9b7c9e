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

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/commercetest/audioprobe/pkg/config"
	"github.com/commercetest/audioprobe/pkg/media"
	"github.com/commercetest/audioprobe/pkg/playback"
	"github.com/commercetest/audioprobe/pkg/signal"
	"github.com/commercetest/audioprobe/pkg/spectral"
	"github.com/commercetest/audioprobe/pkg/stats"
	"github.com/commercetest/audioprobe/pkg/wav"
)

func main() {
	cmd := &cli.Command{
		Name:        "audioprobe",
		Usage:       "audio verification harness",
		Description: "Generates reference signals, encodes WAV evidence and analyzes captures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "audioprobe yaml config file",
				Sources: cli.EnvVars("AUDIOPROBE_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config-body",
				Usage:   "audioprobe yaml config body",
				Sources: cli.EnvVars("AUDIOPROBE_CONFIG_BODY"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "gen",
				Usage: "generate a reference tone and write it as a WAV artifact",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "freq", Value: 440, Usage: "tone frequency, Hz"},
					&cli.DurationFlag{Name: "dur", Value: time.Second, Usage: "tone duration"},
					&cli.Float64Flag{Name: "amp", Value: 1.0, Usage: "peak amplitude"},
					&cli.IntFlag{Name: "channels", Value: 1, Usage: "channel count"},
					&cli.StringFlag{Name: "out", Value: "tone.wav", Usage: "output file"},
				},
				Action: runGen,
			},
			{
				Name:  "analyze",
				Usage: "report dominant frequency, RMS and silence for a WAV file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Usage: "input WAV file", Required: true},
				},
				Action: runAnalyze,
			},
			{
				Name:  "play",
				Usage: "play a generated tone through the default audio device",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "freq", Value: 440, Usage: "tone frequency, Hz"},
					&cli.DurationFlag{Name: "dur", Value: time.Second, Usage: "tone duration"},
					&cli.Float64Flag{Name: "volume", Value: 1.0, Usage: "linear output level"},
				},
				Action: runPlay,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getConfig(c *cli.Command) (*config.Config, error) {
	configBody := c.String("config-body")
	if configBody == "" {
		if configFile := c.String("config"); configFile != "" {
			content, err := os.ReadFile(configFile)
			if err != nil {
				return nil, err
			}
			configBody = string(content)
		}
	}
	conf, err := config.NewConfig(configBody)
	if err != nil {
		return nil, err
	}
	if err := conf.Init(); err != nil {
		return nil, err
	}
	return conf, nil
}

func runGen(ctx context.Context, c *cli.Command) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	log := conf.Logger()

	buf := signal.GenerateTone(conf.SampleRate, c.Float64("freq"), c.Duration("dur"),
		signal.WithAmplitude(c.Float64("amp")),
		signal.WithChannels(c.Int("channels")),
	)
	out := c.String("out")
	if dir := conf.ArtifactDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		out = dir + "/" + out
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := wav.EncodeTo(f, buf); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":     out,
		"samples":  buf.Samples(),
		"duration": buf.Duration(),
	}).Info("wrote tone artifact")
	return nil
}

func runAnalyze(ctx context.Context, c *cli.Command) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	log := conf.Logger()

	data, err := os.ReadFile(c.String("in"))
	if err != nil {
		return err
	}
	h, err := wav.DecodeHeader(data)
	if err != nil {
		return err
	}
	pcm, err := wav.DecodeSamples(data)
	if err != nil {
		return err
	}
	window := make([]float64, len(pcm)/int(h.Channels))
	for i := range window {
		window[i] = float64(media.PCM16ToFloat32(pcm[i*int(h.Channels)]))
	}

	an := spectral.New(conf.FFTSize, int(h.SampleRate))
	frame := an.Transform(window)
	log.WithFields(logrus.Fields{
		"file":     c.String("in"),
		"rate":     h.SampleRate,
		"channels": h.Channels,
		"dominant": an.FindDominantFrequency(frame),
		"rms":      spectral.CalculateRMS(frame),
		"silent":   spectral.IsSilent(frame, conf.Tolerance.SilenceDb),
	}).Info("analysis")
	return nil
}

func runPlay(ctx context.Context, c *cli.Command) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	log := conf.Logger()

	mon := stats.NewMonitor()
	if err := mon.Start(); err != nil {
		return err
	}
	defer mon.Stop()

	buf := signal.GenerateTone(conf.SampleRate, c.Float64("freq"), c.Duration("dur"))
	mon.BufferGenerated()

	sr := beep.SampleRate(conf.SampleRate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return err
	}

	level := c.Float64("volume")
	done := make(chan struct{})
	master := &effects.Volume{
		Streamer: beep.Seq(playback.Streamer(buf), beep.Callback(func() { close(done) })),
		Base:     2,
		Volume:   math.Log2(math.Max(level, 1e-9)),
		Silent:   level <= 0,
	}
	speaker.Play(master)

	log.WithFields(logrus.Fields{
		"freq": c.Float64("freq"),
		"dur":  c.Duration("dur"),
	}).Info("playing")
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
