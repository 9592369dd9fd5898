//go:build !js
// +build !js

package native

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/simukka/lofi-fm/radio"
)

// DefaultFormat is the mixing format of every context.
var DefaultFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// Platform creates beep contexts.
type Platform struct {
	Output Output
	Format beep.Format
	// Latency is the speaker buffer length.
	Latency time.Duration
}

// NewPlatform returns a platform playing through the system speaker.
func NewPlatform() *Platform {
	return &Platform{Output: Speaker{}, Format: DefaultFormat, Latency: 100 * time.Millisecond}
}

func (p *Platform) NewContext() (radio.AudioContext, error) {
	if p.Output == nil {
		return nil, radio.ErrNoAudio
	}
	format := p.Format
	if format.SampleRate == 0 {
		format = DefaultFormat
	}
	latency := p.Latency
	if latency <= 0 {
		latency = 100 * time.Millisecond
	}
	return &Context{
		out:     p.Output,
		format:  format,
		latency: latency,
		root:    &beep.Mixer{},
		state:   radio.ContextSuspended,
	}, nil
}

// Context mirrors an AudioContext on top of beep. It starts suspended;
// Resume opens the speaker and starts pulling the root mixer.
type Context struct {
	out     Output
	format  beep.Format
	latency time.Duration
	root    *beep.Mixer

	mu    sync.Mutex
	state radio.ContextState
}

// Format is the sample format every node in this context mixes at.
func (c *Context) Format() beep.Format { return c.format }

func (c *Context) State() radio.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Context) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case radio.ContextRunning:
		return nil
	case radio.ContextClosed:
		return errors.New("native: context closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.out.Init(c.format.SampleRate, c.format.SampleRate.N(c.latency)); err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	c.out.Play(c.root)
	c.state = radio.ContextRunning
	return nil
}

// Close stops pulling the graph. A closed context cannot resume.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.out.Lock()
	c.root.Clear()
	c.out.Unlock()
	c.state = radio.ContextClosed
}

func (c *Context) Destination() radio.Node {
	return &destination{ctx: c}
}

func (c *Context) CreateGain() radio.GainNode {
	g := &gainNode{ctx: c, mix: &beep.Mixer{}}
	g.fx.Streamer = g.mix
	return g
}

func (c *Context) CreateBufferSource(buf radio.DecodedBuffer) radio.BufferSource {
	b, _ := buf.(*Buffer)
	return &bufferSource{ctx: c, buf: b}
}

// CreateMediaElementSource binds a StreamElement to this context. Like the
// browser, an element can be bridged only once.
func (c *Context) CreateMediaElementSource(el radio.MediaElement) (radio.Node, error) {
	s, ok := el.(*StreamElement)
	if !ok {
		return nil, errors.New("native: media element is not a StreamElement")
	}
	if err := s.bind(c); err != nil {
		return nil, err
	}
	return &bridge{el: s}, nil
}

// locked runs fn while the output is not pulling samples.
func (c *Context) locked(fn func()) {
	c.out.Lock()
	defer c.out.Unlock()
	fn()
}
