//go:build js
// +build js

package ui

import (
	"context"
	"fmt"

	"github.com/gopherjs/gopherjs/js"
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/radio"
)

// Elements are the page nodes the player drives.
type Elements struct {
	Radio      *js.Object
	BtnPlay    *js.Object
	BtnMute    *js.Object
	BtnRain    *js.Object
	BtnVinyl   *js.Object
	VolMain    *js.Object
	VolRain    *js.Object
	VolVinyl   *js.Object
	VolMaster  *js.Object
	Status     *js.Object
	StatusDot  *js.Object
	Track      *js.Object
	MetaArtist *js.Object
	MetaTitle  *js.Object
}

// FindElements looks every element up by id.
func FindElements() (*Elements, error) {
	doc := js.Global.Get("document")
	var missing []string
	get := func(id string) *js.Object {
		el := doc.Call("getElementById", id)
		if el == nil || el == js.Undefined || el == js.Null {
			missing = append(missing, id)
		}
		return el
	}

	els := &Elements{
		Radio:      get("radio"),
		BtnPlay:    get("btnPlay"),
		BtnMute:    get("btnMute"),
		BtnRain:    get("btnRain"),
		BtnVinyl:   get("btnVinyl"),
		VolMain:    get("volMain"),
		VolRain:    get("volRain"),
		VolVinyl:   get("volVinyl"),
		VolMaster:  get("volMaster"),
		Status:     get("status"),
		StatusDot:  get("statusDot"),
		Track:      get("track"),
		MetaArtist: get("metaArtist"),
		MetaTitle:  get("metaTitle"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing elements: %v", missing)
	}
	return els, nil
}

// UI keeps the page in sync with a Player.
type UI struct {
	els    *Elements
	player *radio.Player
	log    zerolog.Logger
}

// Bind attaches every handler and subscription.
func Bind(els *Elements, player *radio.Player, logger zerolog.Logger) *UI {
	u := &UI{
		els:    els,
		player: player,
		log:    logger.With().Str("component", "ui").Logger(),
	}

	els.BtnPlay.Call("addEventListener", "click", func() { u.play() })
	els.BtnMute.Call("addEventListener", "click", func() { u.toggleMute() })
	els.BtnRain.Call("addEventListener", "click", func() { u.toggleAmbient(radio.Rain) })
	els.BtnVinyl.Call("addEventListener", "click", func() { u.toggleAmbient(radio.Vinyl) })

	u.bindSlider(els.VolMain, radio.Main)
	u.bindSlider(els.VolRain, radio.Rain)
	u.bindSlider(els.VolVinyl, radio.Vinyl)
	u.bindSlider(els.VolMaster, radio.Master)

	player.Session.Status().Subscribe(func(s radio.Status) {
		els.Status.Set("textContent", s.String())
		els.StatusDot.Get("style").Set("background", s.Color())
		els.BtnPlay.Set("textContent", PlayLabel(s))
	})
	for _, c := range radio.AmbientChannels {
		c, btn := c, u.ambientButton(c)
		player.Ambient.States(c).Subscribe(func(s radio.AmbientState) {
			btn.Set("textContent", AmbientLabel(c, s))
		})
	}
	player.NowPlaying().Subscribe(u.showNowPlaying)

	u.bindMediaSession()
	return u
}

// play issues the context creation, resume() and play() synchronously so the
// browser ties them to the click, then waits for the outcome off the event
// loop.
func (u *UI) play() {
	finish, err := u.player.Begin()
	if err != nil {
		u.log.Error().Err(err).Msg("audio unavailable")
		return
	}
	go func() {
		if err := finish(context.Background()); err != nil {
			u.log.Error().Err(err).Msg("play failed")
		}
	}()
}

func (u *UI) toggleMute() {
	muted, err := u.player.Session.ToggleMute()
	if err != nil {
		u.log.Error().Err(err).Msg("mute failed")
		return
	}
	u.els.BtnMute.Set("textContent", MuteLabel(muted))
}

func (u *UI) toggleAmbient(c radio.Channel) {
	if _, err := u.player.ToggleAmbient(c); err != nil {
		u.log.Error().Err(err).Str("channel", c.String()).Msg("toggle failed")
	}
}

func (u *UI) ambientButton(c radio.Channel) *js.Object {
	if c == radio.Rain {
		return u.els.BtnRain
	}
	return u.els.BtnVinyl
}

// bindSlider seeds the slider from the graph level and writes every input
// back as the channel gain.
func (u *UI) bindSlider(el *js.Object, c radio.Channel) {
	el.Set("value", u.player.Graph.Level(c))
	el.Call("addEventListener", "input", func(e *js.Object) {
		v := e.Get("target").Get("value").Float()
		if err := u.player.Graph.SetChannelGain(c, v); err != nil {
			u.log.Warn().Err(err).Str("channel", c.String()).Msg("set gain failed")
		}
	})
}

func (u *UI) showNowPlaying(np radio.NowPlaying) {
	u.els.MetaArtist.Set("textContent", ArtistLabel(np))
	u.els.MetaTitle.Set("textContent", TitleLabel(np))
	u.els.Track.Set("textContent", np.Line())
	if !np.Empty() {
		u.updateMediaSession(np)
	}
}

func mediaSession() *js.Object {
	ms := js.Global.Get("navigator").Get("mediaSession")
	if ms == js.Undefined || ms == nil {
		return nil
	}
	return ms
}

func (u *UI) bindMediaSession() {
	ms := mediaSession()
	if ms == nil {
		return
	}
	ms.Call("setActionHandler", "play", func() {
		if u.els.Radio.Get("paused").Bool() {
			u.play()
		}
	})
	ms.Call("setActionHandler", "pause", func() {
		u.els.Radio.Call("pause")
	})
}

func (u *UI) updateMediaSession(np radio.NowPlaying) {
	ms := mediaSession()
	ctor := js.Global.Get("MediaMetadata")
	if ms == nil || ctor == js.Undefined {
		return
	}
	ms.Set("metadata", ctor.New(map[string]interface{}{
		"title":  SessionTitle(np),
		"artist": np.Artist,
		"artwork": []map[string]string{
			{"src": "assets/icon-192.png", "sizes": "192x192", "type": "image/png"},
			{"src": "assets/icon-512.png", "sizes": "512x512", "type": "image/png"},
		},
	}))
}
