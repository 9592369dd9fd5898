//go:build !js
// +build !js

package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/metadata"
	"github.com/simukka/lofi-fm/radio"
)

// relay feeds the hub from the upstream metadata feed until ctx is done.
// Events that do not parse are not forwarded.
func relay(ctx context.Context, url string, hub *metadata.Hub, logger zerolog.Logger) {
	log := logger.With().Str("component", "relay").Str("upstream", url).Logger()
	err := metadata.SubscribeRaw(ctx, url, logger, func(data []byte) {
		np, err := radio.ParseNowPlaying(data)
		if err != nil {
			log.Debug().Err(err).Msg("dropping malformed upstream event")
			return
		}
		log.Info().Str("artist", np.Artist).Str("title", np.Title).Msg("now playing")
		hub.Publish(data)
	})
	if err != nil {
		log.Error().Err(err).Msg("upstream metadata feed stopped")
	}
}

// superviseRelay runs at most one relay, restarting it whenever a different
// upstream URL arrives on urls. An empty URL stops relaying. It returns once
// ctx is done and the running relay has stopped.
func superviseRelay(ctx context.Context, urls <-chan string, hub *metadata.Hub, logger zerolog.Logger) {
	log := logger.With().Str("component", "relay").Logger()

	var current string
	stop := func() {}
	done := make(chan struct{})
	close(done)

	for {
		select {
		case <-ctx.Done():
			stop()
			<-done
			return
		case url := <-urls:
			if url == current {
				continue
			}
			stop()
			<-done
			current = url
			stop = func() {}
			if url == "" {
				log.Info().Msg("metadata relay disabled")
				continue
			}

			log.Info().Str("upstream", url).Msg("starting metadata relay")
			rctx, cancel := context.WithCancel(ctx)
			stop = cancel
			d := make(chan struct{})
			done = d
			go func() {
				defer close(d)
				relay(rctx, url, hub, logger)
			}()
		}
	}
}
