//go:build js
// +build js

// Package audio is the Web Audio backend of the player. It wraps the
// browser's AudioContext, gain and buffer source nodes, the <audio> element
// and fetch behind the radio platform interfaces.
package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/lofi-fm/radio"
)

// Platform creates Web Audio contexts.
type Platform struct{}

// NewContext creates an AudioContext, falling back to the prefixed
// webkitAudioContext on older Safari.
func (Platform) NewContext() (radio.AudioContext, error) {
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil, radio.ErrNoAudio
	}

	var obj *js.Object
	if err := try(func() { obj = ctor.New() }); err != nil {
		return nil, fmt.Errorf("%w: %v", radio.ErrNoAudio, err)
	}
	return &Context{obj: obj}, nil
}

// Context is a browser AudioContext.
type Context struct {
	obj      *js.Object
	resuming *js.Object // resume() promise issued by StartInGesture
}

func (c *Context) State() radio.ContextState {
	return radio.ContextState(c.obj.Get("state").String())
}

// StartInGesture calls resume() without waiting for it.
func (c *Context) StartInGesture() {
	if c.resuming == nil {
		c.resuming = c.obj.Call("resume")
	}
}

// Resume waits for the resume promise, reusing the one issued in the
// gesture if any. Browsers reject it outside a user gesture.
func (c *Context) Resume(ctx context.Context) error {
	p := c.resuming
	c.resuming = nil
	if p == nil {
		p = c.obj.Call("resume")
	}
	_, err := await(ctx, p)
	return err
}

func (c *Context) Destination() radio.Node {
	return &node{obj: c.obj.Get("destination")}
}

func (c *Context) CreateGain() radio.GainNode {
	return &gain{node{obj: c.obj.Call("createGain")}}
}

// CreateBufferSource creates a one-shot source for buf. Buffers from other
// backends produce a silent source.
func (c *Context) CreateBufferSource(buf radio.DecodedBuffer) radio.BufferSource {
	src := c.obj.Call("createBufferSource")
	if b, ok := buf.(*Buffer); ok {
		src.Set("buffer", b.obj)
	}
	return &bufferSource{node{obj: src}}
}

// CreateMediaElementSource bridges el into the graph. The browser allows
// this once per element.
func (c *Context) CreateMediaElementSource(el radio.MediaElement) (radio.Node, error) {
	m, ok := el.(*MediaElement)
	if !ok {
		return nil, errors.New("audio: media element is not an HTMLMediaElement")
	}
	var obj *js.Object
	if err := try(func() { obj = c.obj.Call("createMediaElementSource", m.obj) }); err != nil {
		return nil, fmt.Errorf("create media element source: %w", err)
	}
	return &node{obj: obj}, nil
}

// Decode runs decodeAudioData on a copy of data.
func (c *Context) Decode(ctx context.Context, data []byte) (radio.DecodedBuffer, error) {
	obj, err := await(ctx, c.obj.Call("decodeAudioData", js.NewArrayBuffer(data)))
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return &Buffer{obj: obj}, nil
}

// Buffer is a decoded AudioBuffer.
type Buffer struct {
	obj *js.Object
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	return b.obj.Get("duration").Float()
}
