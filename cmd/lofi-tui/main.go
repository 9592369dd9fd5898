//go:build !js
// +build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/config"
	"github.com/simukka/lofi-fm/metadata"
	"github.com/simukka/lofi-fm/native"
	"github.com/simukka/lofi-fm/radio"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	logPath := flag.String("log", "lofi-tui.log", "Log file")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, "lofi-tui:", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to the file.
	log := zerolog.New(zerolog.ConsoleWriter{Out: logFile, NoColor: true, TimeFormat: time.RFC3339}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	root := "."
	if configPath != "" {
		root = filepath.Dir(configPath)
	}

	stream := native.NewStreamElement(nil, log)
	player := radio.NewPlayer(native.NewPlatform(), stream, native.Fetcher{Root: root}, cfg.PlayerOptions(), log)
	stream.OnEvent(player.Session.HandleMediaEvent)

	p := tea.NewProgram(newModel(player, log), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Observers fire from whichever goroutine changed the state, including
	// the update loop itself, so the send must not block.
	refresh := func() { go p.Send(refreshMsg{}) }
	defer player.Session.Status().Subscribe(func(radio.Status) { refresh() })()
	defer player.NowPlaying().Subscribe(func(radio.NowPlaying) { refresh() })()
	for _, c := range radio.AmbientChannels {
		defer player.Ambient.States(c).Subscribe(func(radio.AmbientState) { refresh() })()
	}

	if cfg.MetadataURL != "" {
		go func() {
			if err := metadata.Subscribe(ctx, cfg.MetadataURL, log, player.UpdateNowPlaying); err != nil {
				log.Warn().Err(err).Msg("now playing unavailable")
			}
		}()
	}
	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, log, func(c config.Config) { p.Send(configMsg(c)) })
			if err != nil {
				log.Warn().Err(err).Msg("config watch stopped")
			}
		}()
	}

	log.Info().Str("stream", cfg.StreamURL).Msg("starting lofi-tui")
	_, err = p.Run()
	return err
}
