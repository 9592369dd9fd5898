//go:build !js
// +build !js

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/config"
	"github.com/simukka/lofi-fm/metadata"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	staticDir := flag.String("static", "", "Directory to serve the compiled player from (overrides config)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = log.Level(cfg.Level())
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := metadata.NewHub(log)
	defer hub.Close()
	srv := NewServer(cfg, hub, log)

	// A reload that changes metadata_url restarts the relay.
	upstream := make(chan string, 1)
	upstream <- cfg.MetadataURL
	go superviseRelay(ctx, upstream, hub, log)

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, log, func(c config.Config) {
				srv.SetConfig(c)
				select {
				case upstream <- c.MetadataURL:
				case <-ctx.Done():
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watch stopped")
			}
		}()
	}

	router := srv.NewHTTPRouter(cfg.StaticDir)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("static", cfg.StaticDir).Msg("serving lofi fm")
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	// Close SSE streams first so Shutdown does not wait on them.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
