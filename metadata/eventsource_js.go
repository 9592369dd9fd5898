//go:build js
// +build js

package metadata

import (
	"context"
	"errors"

	"github.com/gopherjs/gopherjs/js"
	"github.com/rs/zerolog"
)

// ErrNoEventSource is returned when the browser lacks EventSource.
var ErrNoEventSource = errors.New("EventSource not supported")

// Subscribe opens an EventSource on url and calls fn with every now-playing
// update until ctx is done. The browser reconnects dropped streams itself.
func Subscribe(ctx context.Context, url string, logger zerolog.Logger, fn Handler) error {
	log := logger.With().Str("component", "metadata").Str("url", url).Logger()

	ctor := js.Global.Get("EventSource")
	if ctor == js.Undefined {
		return ErrNoEventSource
	}

	es := ctor.New(url)
	es.Set("onopen", func() {
		log.Info().Msg("metadata feed connected")
	})
	es.Set("onmessage", func(ev *js.Object) {
		dispatch([]byte(ev.Get("data").String()), fn, log)
	})
	es.Set("onerror", func() {
		// readyState 2 means the browser gave up reconnecting.
		if es.Get("readyState").Int() == 2 {
			log.Warn().Msg("metadata feed closed")
			return
		}
		log.Debug().Msg("metadata feed reconnecting")
	})

	<-ctx.Done()
	es.Call("close")
	return nil
}
