//go:build !js
// +build !js

package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/radio"
)

var errNotRouted = errors.New("native: stream element is not routed into a context")

// StreamElement plays a live MP3 stream over HTTP. It stands in for the
// browser's <audio> element: pausing a live stream closes the connection and
// playing again reconnects at the live edge.
type StreamElement struct {
	client *http.Client
	log    zerolog.Logger

	mu     sync.Mutex
	src    string
	paused bool
	ctx    *Context               // Set once bridged
	out    *beep.Mixer            // Main channel input
	ctrl   *beep.Ctrl             // Current stream, nil while paused
	body   io.Closer              // Current connection
	onEv   func(radio.MediaEvent) // Event sink
}

// NewStreamElement creates a paused element with no source.
func NewStreamElement(client *http.Client, logger zerolog.Logger) *StreamElement {
	if client == nil {
		client = http.DefaultClient
	}
	return &StreamElement{
		client: client,
		paused: true,
		log:    logger.With().Str("component", "stream").Logger(),
	}
}

// OnEvent registers the lifecycle listener. fn is never called with the
// element's lock held.
func (e *StreamElement) OnEvent(fn func(radio.MediaEvent)) {
	e.mu.Lock()
	e.onEv = fn
	e.mu.Unlock()
}

func (e *StreamElement) emit(ev radio.MediaEvent) {
	e.mu.Lock()
	fn := e.onEv
	e.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (e *StreamElement) bind(c *Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx != nil {
		return errors.New("native: stream element already bridged")
	}
	e.ctx = c
	return nil
}

func (e *StreamElement) route(m *beep.Mixer) {
	e.mu.Lock()
	e.out = m
	e.mu.Unlock()
}

func (e *StreamElement) Src() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// SetSrc switches the source. A playing stream is dropped and the element
// pauses, as a browser does on src assignment, even when url is unchanged.
func (e *StreamElement) SetSrc(url string) {
	e.mu.Lock()
	e.src = url
	wasPlaying := !e.paused
	e.closeLocked()
	e.mu.Unlock()

	if wasPlaying {
		e.emit(radio.MediaPause)
	}
}

func (e *StreamElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Play connects to the source and starts feeding the graph. It returns once
// the stream headers have been decoded.
func (e *StreamElement) Play(ctx context.Context) error {
	e.mu.Lock()
	if !e.paused {
		e.mu.Unlock()
		return nil
	}
	src, c, out := e.src, e.ctx, e.out
	e.mu.Unlock()

	if c == nil || out == nil {
		return errNotRouted
	}
	if src == "" {
		return errors.New("native: no source")
	}

	e.emit(radio.MediaWaiting)
	stream, body, err := e.dial(ctx, src, c.format)
	if err != nil {
		e.emit(radio.MediaError)
		return err
	}

	e.mu.Lock()
	if e.src != src || !e.paused {
		// Superseded while dialing.
		e.mu.Unlock()
		body.Close()
		return nil
	}
	e.ctrl = &beep.Ctrl{Streamer: &watchdog{Streamer: stream, done: e.ended}}
	e.body = body
	e.paused = false
	ctrl := e.ctrl
	e.mu.Unlock()

	c.locked(func() { out.Add(ctrl) })
	e.log.Info().Str("src", src).Msg("stream playing")
	e.emit(radio.MediaPlay)
	return nil
}

// Pause disconnects from the stream.
func (e *StreamElement) Pause() {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return
	}
	e.closeLocked()
	e.mu.Unlock()
	e.emit(radio.MediaPause)
}

// closeLocked drops the current stream. The output lock is taken inside so
// callers must not hold it.
func (e *StreamElement) closeLocked() {
	if e.ctrl != nil && e.ctx != nil {
		ctrl := e.ctrl
		e.ctx.locked(func() { ctrl.Streamer = nil })
	}
	if e.body != nil {
		e.body.Close()
	}
	e.ctrl, e.body = nil, nil
	e.paused = true
}

// ended runs on the speaker goroutine when the stream stops producing.
func (e *StreamElement) ended(err error) {
	go func() {
		e.mu.Lock()
		if e.paused {
			e.mu.Unlock()
			return
		}
		if e.body != nil {
			e.body.Close()
		}
		e.ctrl, e.body = nil, nil
		e.paused = true
		e.mu.Unlock()

		if err != nil {
			e.log.Warn().Err(err).Msg("stream failed")
			e.emit(radio.MediaError)
			return
		}
		e.log.Warn().Msg("stream ended")
		e.emit(radio.MediaStalled)
	}()
}

func (e *StreamElement) dial(ctx context.Context, url string, format beep.Format) (beep.Streamer, io.Closer, error) {
	// The connection outlives ctx, which only bounds the dial.
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}

	type dialed struct {
		resp *http.Response
		err  error
	}
	ch := make(chan dialed, 1)
	go func() {
		resp, err := e.client.Do(req)
		ch <- dialed{resp, err}
	}()

	var resp *http.Response
	select {
	case d := <-ch:
		if d.err != nil {
			return nil, nil, fmt.Errorf("open stream: %w", d.err)
		}
		resp = d.resp
	case <-ctx.Done():
		go func() {
			if d := <-ch; d.resp != nil {
				d.resp.Body.Close()
			}
		}()
		return nil, nil, ctx.Err()
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("open stream: status %s", resp.Status)
	}

	decoded, f, err := mp3.Decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}

	var s beep.Streamer = decoded
	if f.SampleRate != format.SampleRate {
		s = beep.Resample(4, f.SampleRate, format.SampleRate, decoded)
	}
	return s, decoded, nil
}

// watchdog reports once when the wrapped streamer is exhausted.
type watchdog struct {
	beep.Streamer
	done  func(error)
	fired bool
}

func (w *watchdog) Stream(samples [][2]float64) (int, bool) {
	n, ok := w.Streamer.Stream(samples)
	if !ok && !w.fired {
		w.fired = true
		w.done(w.Streamer.Err())
	}
	return n, ok
}
