//go:build js
// +build js

package main

import (
	"context"

	"github.com/gopherjs/gopherjs/js"
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/audio"
	"github.com/simukka/lofi-fm/config"
	"github.com/simukka/lofi-fm/metadata"
	"github.com/simukka/lofi-fm/radio"
	"github.com/simukka/lofi-fm/ui"
)

// configURL is served by the app-shell server. Static hosting falls back to
// the built-in defaults.
const configURL = "api/config"

func main() {
	log := audio.NewLogger(zerolog.InfoLevel)

	doc := js.Global.Get("document")
	if doc.Get("readyState").String() == "loading" {
		doc.Call("addEventListener", "DOMContentLoaded", func() { go run(log) })
	} else {
		go run(log)
	}

	select {}
}

func run(log zerolog.Logger) {
	ctx := context.Background()

	cfg := loadConfig(ctx, log)
	log = log.Level(cfg.Level())

	els, err := ui.FindElements()
	if err != nil {
		log.Error().Err(err).Msg("page is missing player controls")
		return
	}

	media := audio.NewMediaElement(els.Radio)
	player := radio.NewPlayer(audio.Platform{}, media, audio.Fetcher{}, cfg.PlayerOptions(), log)
	media.OnEvent(player.Session.HandleMediaEvent)
	ui.Bind(els, player, log)

	if cfg.MetadataURL != "" {
		go func() {
			if err := metadata.Subscribe(ctx, cfg.MetadataURL, log, player.UpdateNowPlaying); err != nil {
				log.Warn().Err(err).Msg("now playing unavailable")
			}
		}()
	}

	log.Info().Str("stream", cfg.StreamURL).Msg("player ready")
}

func loadConfig(ctx context.Context, log zerolog.Logger) config.Config {
	data, err := audio.Fetcher{}.Fetch(ctx, configURL)
	if err != nil {
		log.Debug().Err(err).Msg("using default config")
		return config.Default()
	}
	// JSON is valid YAML, so the server's config parses with the same rules.
	cfg, err := config.Parse(data)
	if err != nil {
		log.Warn().Err(err).Msg("invalid server config, using defaults")
		return config.Default()
	}
	return cfg
}
