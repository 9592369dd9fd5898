package radio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestPlayer(p *fakePlatform, m *fakeMedia, f *fakeFetcher) *Player {
	return NewPlayer(p, m, f, Options{
		StreamURL: testStreamURL,
		Ambient:   testAssets,
		Levels:    map[Channel]float64{Master: 0.8, Main: 0.9, Rain: 0.5, Vinyl: 0.5},
	}, zerolog.Nop())
}

func waitLoaded(t *testing.T, p *Player) {
	t.Helper()
	select {
	case <-p.AmbientLoaded():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ambient loops")
	}
}

// TestPlayer_LoadsAmbientAfterFirstGesture tests that ambient loops load only once the graph exists
func TestPlayer_LoadsAmbientAfterFirstGesture(t *testing.T) {
	fetcher := newFakeFetcher()
	p := newTestPlayer(newFakePlatform(), newFakeMedia(), fetcher)

	if state, _ := p.Ambient.Toggle(Rain); state != Stopped {
		t.Fatal("Expected rain to stay stopped before any gesture")
	}
	if p.Cache.Ready("rain") {
		t.Fatal("Expected nothing loaded before the graph exists")
	}

	if err := p.Prepare(); err != nil {
		t.Fatal(err)
	}
	waitLoaded(t, p)

	if err := p.AmbientLoadErr(); err != nil {
		t.Fatalf("Unexpected load error: %v", err)
	}
	state, err := p.ToggleAmbient(Rain)
	if err != nil || state != Playing {
		t.Errorf("Expected rain Playing after load, got %v (%v)", state, err)
	}
}

// TestPlayer_AmbientToggleLeavesSessionReady tests that an ambient toggle as
// the first gesture finishes session setup
func TestPlayer_AmbientToggleLeavesSessionReady(t *testing.T) {
	p := newTestPlayer(newFakePlatform(), newFakeMedia(), newFakeFetcher())

	if _, err := p.ToggleAmbient(Rain); err != nil {
		t.Fatal(err)
	}
	if !p.Graph.Initialized() {
		t.Error("Expected the graph to be built")
	}
	if got := p.Session.State(); got != Ready {
		t.Errorf("Expected Ready, got %v", got)
	}
	waitLoaded(t, p)
}

// TestPlayer_FailedAssetLeavesChannelUnavailable tests that one failed asset leaves only its channel unavailable
func TestPlayer_FailedAssetLeavesChannelUnavailable(t *testing.T) {
	platform := newFakePlatform()
	platform.decodeErr[testAssets["vinyl"]] = errors.New("EncodingError")
	p := newTestPlayer(platform, newFakeMedia(), newFakeFetcher())

	_ = p.Prepare()
	waitLoaded(t, p)

	if p.AmbientLoadErr() == nil {
		t.Error("Expected the vinyl failure to be reported")
	}
	if state, _ := p.ToggleAmbient(Vinyl); state != Stopped {
		t.Error("Expected vinyl toggle to be a no-op")
	}
	if state, _ := p.ToggleAmbient(Rain); state != Playing {
		t.Error("Expected rain to play")
	}
}

// TestPlayer_FreshSessionScenario tests that a first play on a fresh player ends up playing and Ready
func TestPlayer_FreshSessionScenario(t *testing.T) {
	platform := newFakePlatform()
	media := newFakeMedia()
	p := newTestPlayer(platform, media, newFakeFetcher())

	if err := p.Play(context.Background()); err != nil {
		t.Fatal(err)
	}
	if platform.ctx().State() != ContextRunning {
		t.Error("Expected context resumed")
	}
	if media.Paused() {
		t.Error("Expected media playing")
	}
	if p.Session.Status().Get() != StatusPlaying || p.Session.State() != Ready {
		t.Errorf("Expected Playing/Ready, got %v/%v", p.Session.Status().Get(), p.Session.State())
	}
	waitLoaded(t, p)
}

// TestPlayer_UpdateNowPlaying tests that now-playing updates reach subscribers
func TestPlayer_UpdateNowPlaying(t *testing.T) {
	p := newTestPlayer(newFakePlatform(), newFakeMedia(), newFakeFetcher())

	np, err := ParseNowPlaying([]byte(`{"streamTitle": "Artist X - Track Y"}`))
	if err != nil {
		t.Fatal(err)
	}
	p.UpdateNowPlaying(np)

	got := p.NowPlaying().Get()
	if got.Artist != "Artist X" || got.Title != "Track Y" {
		t.Errorf("Expected Artist X / Track Y, got %+v", got)
	}
}

// TestObservable_SubscribeAndCancel tests that subscribers see the current value and stop after cancel
func TestObservable_SubscribeAndCancel(t *testing.T) {
	o := NewObservable(1)
	var got []int
	cancel := o.Subscribe(func(v int) { got = append(got, v) })

	o.Set(2)
	cancel()
	o.Set(3)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected [1 2], got %v", got)
	}
	if o.Get() != 3 {
		t.Errorf("Expected current value 3, got %d", o.Get())
	}
}
