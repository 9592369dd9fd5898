//go:build js
// +build js

package audio

import (
	"context"
	"fmt"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/lofi-fm/radio"
)

// MediaElement wraps the <audio> element carrying the live stream.
type MediaElement struct {
	obj *js.Object

	// play() issued by StartInGesture, collected by the next Play
	pending    *js.Object
	pendingErr error
}

// NewMediaElement wraps an existing HTMLMediaElement.
func NewMediaElement(obj *js.Object) *MediaElement {
	return &MediaElement{obj: obj}
}

// FindMediaElement looks up the element by id.
func FindMediaElement(id string) (*MediaElement, error) {
	el := js.Global.Get("document").Call("getElementById", id)
	if el == nil || el == js.Undefined || el == js.Null {
		return nil, fmt.Errorf("audio element #%s not found", id)
	}
	return NewMediaElement(el), nil
}

func (m *MediaElement) Object() *js.Object { return m.obj }

// Src returns the resolved source URL.
func (m *MediaElement) Src() string {
	return m.obj.Get("src").String()
}

func (m *MediaElement) SetSrc(url string) {
	m.clearPending()
	m.obj.Set("src", url)
}

func (m *MediaElement) Paused() bool {
	return m.obj.Get("paused").Bool()
}

// StartInGesture calls play() without waiting for it.
func (m *MediaElement) StartInGesture() {
	if m.pending != nil || m.pendingErr != nil {
		return
	}
	m.pendingErr = try(func() { m.pending = m.obj.Call("play") })
}

// Play waits for the play() promise, reusing the one issued in the gesture
// if any. A NotAllowedError rejection matches radio.ErrAutoplayBlocked.
func (m *MediaElement) Play(ctx context.Context) error {
	p, err := m.pending, m.pendingErr
	m.clearPending()
	if p == nil && err == nil {
		err = try(func() { p = m.obj.Call("play") })
	}
	if err != nil {
		return err
	}
	_, err = await(ctx, p)
	return err
}

func (m *MediaElement) Pause() {
	m.clearPending()
	m.obj.Call("pause")
}

func (m *MediaElement) clearPending() {
	m.pending, m.pendingErr = nil, nil
}

var mediaEvents = map[string]radio.MediaEvent{
	"play":    radio.MediaPlay,
	"pause":   radio.MediaPause,
	"stalled": radio.MediaStalled,
	"waiting": radio.MediaWaiting,
	"error":   radio.MediaError,
}

// OnEvent forwards the element's lifecycle events to fn.
func (m *MediaElement) OnEvent(fn func(radio.MediaEvent)) {
	for name, ev := range mediaEvents {
		ev := ev
		m.obj.Call("addEventListener", name, func() { fn(ev) })
	}
}
