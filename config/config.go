// Package config holds the player configuration: stream endpoints, ambient
// assets and the initial mixer levels.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/simukka/lofi-fm/radio"
)

// Levels are the initial slider positions, 0.0 - 1.0.
type Levels struct {
	Master float64 `yaml:"master" json:"master"`
	Main   float64 `yaml:"main" json:"main"`
	Rain   float64 `yaml:"rain" json:"rain"`
	Vinyl  float64 `yaml:"vinyl" json:"vinyl"`
}

// Config is the complete player configuration.
type Config struct {
	// Endpoints
	StreamURL   string `yaml:"stream_url" json:"stream_url"`     // Live audio stream
	MetadataURL string `yaml:"metadata_url" json:"metadata_url"` // SSE now-playing feed

	// Ambient loops, name -> URL or path
	Ambient map[string]string `yaml:"ambient" json:"ambient"`

	Levels          Levels `yaml:"levels" json:"levels"`
	LoadConcurrency int    `yaml:"load_concurrency" json:"load_concurrency"`
	LogLevel        string `yaml:"log_level" json:"log_level"`

	// Server settings
	Addr      string `yaml:"addr" json:"-"`
	StaticDir string `yaml:"static_dir" json:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StreamURL:   "https://stream.zeno.fm/0r0xa792kwzuv",
		MetadataURL: "https://api.zeno.fm/mounts/metadata/subscribe/0r0xa792kwzuv",
		Ambient: map[string]string{
			"rain":  "assets/rain_loop.wav",
			"vinyl": "assets/vinyl_loop.wav",
		},
		Levels: Levels{
			Master: 0.8,
			Main:   0.9,
			Rain:   0.35,
			Vinyl:  0.25,
		},
		LoadConcurrency: radio.DefaultLoadConcurrency,
		LogLevel:        "info",
		Addr:            ":8080",
		StaticDir:       ".",
	}
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML file. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Validate checks that the configuration can drive a player.
func (c Config) Validate() error {
	var errs []error
	if c.StreamURL == "" {
		errs = append(errs, errors.New("stream_url is required"))
	} else if u, err := url.Parse(c.StreamURL); err != nil || u.Scheme == "" {
		errs = append(errs, fmt.Errorf("stream_url %q is not an absolute URL", c.StreamURL))
	}
	for name := range c.Ambient {
		if ch, ok := radio.ParseChannel(name); !ok || !ch.Ambient() {
			errs = append(errs, fmt.Errorf("ambient %q is not an ambient channel", name))
		}
	}
	for ch, v := range c.Levels.ByChannel() {
		if v < 0 {
			errs = append(errs, fmt.Errorf("levels.%s must not be negative", ch))
		}
	}
	if c.LoadConcurrency < 0 {
		errs = append(errs, errors.New("load_concurrency must not be negative"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// ByChannel keys the levels by mixer channel.
func (l Levels) ByChannel() map[radio.Channel]float64 {
	return map[radio.Channel]float64{
		radio.Master: l.Master,
		radio.Main:   l.Main,
		radio.Rain:   l.Rain,
		radio.Vinyl:  l.Vinyl,
	}
}

// PlayerOptions converts the configuration into radio.Options.
func (c Config) PlayerOptions() radio.Options {
	return radio.Options{
		StreamURL:       c.StreamURL,
		Ambient:         c.Ambient,
		Levels:          c.Levels.ByChannel(),
		LoadConcurrency: c.LoadConcurrency,
	}
}

// Level returns the zerolog level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
