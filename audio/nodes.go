//go:build js
// +build js

package audio

import (
	"errors"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/lofi-fm/radio"
)

var errForeignNode = errors.New("audio: cannot connect to a node from another backend")

type jsNode interface {
	object() *js.Object
}

type node struct {
	obj *js.Object
}

func (n *node) object() *js.Object { return n.obj }

func (n *node) Connect(dst radio.Node) error {
	d, ok := dst.(jsNode)
	if !ok {
		return errForeignNode
	}
	return try(func() { n.obj.Call("connect", d.object()) })
}

type gain struct {
	node
}

func (g *gain) Gain() float64 {
	return g.obj.Get("gain").Get("value").Float()
}

func (g *gain) SetGain(v float64) {
	g.obj.Get("gain").Set("value", v)
}

type bufferSource struct {
	node
}

func (s *bufferSource) SetLoop(loop bool) {
	s.obj.Set("loop", loop)
}

func (s *bufferSource) Start(offset float64) error {
	return try(func() { s.obj.Call("start", 0, offset) })
}

// Stop throws InvalidStateError when the source never started.
func (s *bufferSource) Stop() error {
	return try(func() { s.obj.Call("stop") })
}
