//go:build !js
// +build !js

package native

import (
	"errors"
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"

	"github.com/simukka/lofi-fm/radio"
)

var errForeignNode = errors.New("native: cannot connect to a node from another backend")

// input is a node other nodes can be routed into.
type input interface {
	mixer() *beep.Mixer
}

func inputOf(dst radio.Node) (*beep.Mixer, error) {
	in, ok := dst.(input)
	if !ok {
		return nil, errForeignNode
	}
	return in.mixer(), nil
}

type destination struct {
	ctx *Context
}

func (d *destination) mixer() *beep.Mixer { return d.ctx.root }

func (d *destination) Connect(radio.Node) error {
	return errors.New("native: destination has no outputs")
}

// gainNode sums its inputs and scales them. effects.Gain multiplies by
// 1+Gain, so the stored value is offset by one.
type gainNode struct {
	ctx *Context
	mix *beep.Mixer
	fx  effects.Gain
}

func (g *gainNode) mixer() *beep.Mixer { return g.mix }

func (g *gainNode) Connect(dst radio.Node) error {
	m, err := inputOf(dst)
	if err != nil {
		return err
	}
	g.ctx.locked(func() { m.Add(&g.fx) })
	return nil
}

func (g *gainNode) Gain() float64 {
	var v float64
	g.ctx.locked(func() { v = g.fx.Gain + 1 })
	return v
}

func (g *gainNode) SetGain(v float64) {
	g.ctx.locked(func() { g.fx.Gain = v - 1 })
}

// bufferSource plays a decoded buffer once, or forever when looping.
// Stopping drops the streamer so the parent mixer removes it.
type bufferSource struct {
	ctx  *Context
	buf  *Buffer
	loop bool
	dst  *beep.Mixer
	ctrl *beep.Ctrl
}

func (s *bufferSource) Connect(dst radio.Node) error {
	m, err := inputOf(dst)
	if err != nil {
		return err
	}
	s.dst = m
	return nil
}

func (s *bufferSource) SetLoop(loop bool) { s.loop = loop }

func (s *bufferSource) Start(offset float64) error {
	switch {
	case s.ctrl != nil:
		return errors.New("native: source already started")
	case s.buf == nil:
		return errors.New("native: source has no buffer")
	case s.buf.buf.Len() == 0:
		return errors.New("native: source buffer is empty")
	case s.dst == nil:
		return errors.New("native: source is not connected")
	}

	from := s.buf.buf.Format().SampleRate.N(time.Duration(offset * float64(time.Second)))
	if from < 0 || from >= s.buf.buf.Len() {
		return fmt.Errorf("native: offset %.2fs outside buffer", offset)
	}
	seeker := s.buf.buf.Streamer(0, s.buf.buf.Len())
	if err := seeker.Seek(from); err != nil {
		return err
	}

	var stream beep.Streamer = seeker
	if s.loop {
		stream = beep.Loop(-1, seeker)
	}
	s.ctrl = &beep.Ctrl{Streamer: stream}
	s.ctx.locked(func() { s.dst.Add(s.ctrl) })
	return nil
}

func (s *bufferSource) Stop() error {
	if s.ctrl == nil {
		return errors.New("native: source not started")
	}
	s.ctx.locked(func() { s.ctrl.Streamer = nil })
	return nil
}

// bridge routes a StreamElement into the graph.
type bridge struct {
	el *StreamElement
}

func (b *bridge) Connect(dst radio.Node) error {
	m, err := inputOf(dst)
	if err != nil {
		return err
	}
	b.el.route(m)
	return nil
}
