// Package metadata delivers now-playing updates from the station's SSE feed.
//
// Subscribe has two implementations: the browser one wraps EventSource, the
// native one uses an SSE client with reconnect backoff. Hub relays one feed
// to many HTTP clients.
package metadata

import (
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/radio"
)

// Handler receives every successfully parsed update.
type Handler func(radio.NowPlaying)

// dispatch parses one event payload and hands it to fn. Empty payloads
// (keepalives) and malformed JSON are dropped.
func dispatch(data []byte, fn Handler, log zerolog.Logger) {
	if len(data) == 0 {
		return
	}
	np, err := radio.ParseNowPlaying(data)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring malformed metadata event")
		return
	}
	fn(np)
}
