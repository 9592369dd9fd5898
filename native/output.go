//go:build !js
// +build !js

// Package native is the desktop backend of the player. The audio graph is
// built from beep mixers and gain effects and played through the system
// speaker.
package native

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is where the root mixer ends up. Every graph mutation happens under
// its lock because the output pulls samples from its own goroutine.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

// Speaker plays through the default sound device.
type Speaker struct{}

func (Speaker) Init(sr beep.SampleRate, bufferSize int) error { return speaker.Init(sr, bufferSize) }
func (Speaker) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (Speaker) Lock() { speaker.Lock() }
func (Speaker) Unlock() { speaker.Unlock() }
