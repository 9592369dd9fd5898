//go:build !js
// +build !js

package metadata

import (
	"context"
	"errors"
	"time"

	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
	"gopkg.in/cenkalti/backoff.v1"
)

// SubscribeRaw streams the data field of every event from url to fn until
// ctx is done. Dropped connections are retried with exponential backoff
// for as long as ctx lives, including feeds that end cleanly.
func SubscribeRaw(ctx context.Context, url string, logger zerolog.Logger, fn func([]byte)) error {
	log := logger.With().Str("component", "metadata").Str("url", url).Logger()

	// The client default gives up 15 minutes after subscribing.
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = MaxReconnectInterval
	b.MaxElapsedTime = 0

	client := sse.NewClient(url)
	client.ReconnectStrategy = contextBackOff{ctx: ctx, BackOff: b}
	client.ReconnectNotify = func(err error, wait time.Duration) {
		log.Debug().Err(err).Dur("retry_in", wait).Msg("metadata feed reconnecting")
	}
	client.OnConnect(func(*sse.Client) {
		log.Info().Msg("metadata feed connected")
	})
	client.OnDisconnect(func(*sse.Client) {
		log.Warn().Msg("metadata feed disconnected")
	})

	for {
		err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
			if len(msg.Data) == 0 {
				return
			}
			fn(msg.Data)
		})
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}

		wait := b.NextBackOff()
		log.Warn().Err(err).Dur("retry_in", wait).Msg("metadata feed ended, resubscribing")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// MaxReconnectInterval caps the wait between reconnect attempts.
const MaxReconnectInterval = 30 * time.Second

// contextBackOff stops retrying once ctx is done.
type contextBackOff struct {
	ctx context.Context
	backoff.BackOff
}

func (b contextBackOff) NextBackOff() time.Duration {
	if b.ctx.Err() != nil {
		return backoff.Stop
	}
	return b.BackOff.NextBackOff()
}

// Subscribe calls fn with every now-playing update from url until ctx is done.
func Subscribe(ctx context.Context, url string, logger zerolog.Logger, fn Handler) error {
	log := logger.With().Str("component", "metadata").Logger()
	return SubscribeRaw(ctx, url, logger, func(data []byte) {
		dispatch(data, fn, log)
	})
}
