package main

import (
	"context"
	"math"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/simukka/lofi-fm/config"
	"github.com/simukka/lofi-fm/radio"
)

// levelStep is how far one key press moves a slider.
const levelStep = 0.05

type (
	// refreshMsg asks for a redraw after player state changed elsewhere.
	refreshMsg  struct{}
	configMsg   config.Config
	playDoneMsg struct{ err error }
)

type model struct {
	player *radio.Player
	log    zerolog.Logger
	keys   keyMap
	help   help.Model

	err   error
	width int
}

func newModel(player *radio.Player, logger zerolog.Logger) model {
	return model{
		player: player,
		log:    logger.With().Str("component", "tui").Logger(),
		keys:   keys,
		help:   help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshMsg:
	case playDoneMsg:
		m.err = msg.err
	case configMsg:
		m.applyConfig(config.Config(msg))
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.player.Ambient.StopAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		if err := m.player.Prepare(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		return m, m.play

	case key.Matches(msg, m.keys.Rain):
		m.toggle(radio.Rain)
	case key.Matches(msg, m.keys.Vinyl):
		m.toggle(radio.Vinyl)

	case key.Matches(msg, m.keys.Mute):
		_, m.err = m.player.Session.ToggleMute()

	case key.Matches(msg, m.keys.MainUp):
		m.nudge(radio.Main, levelStep)
	case key.Matches(msg, m.keys.MainDown):
		m.nudge(radio.Main, -levelStep)
	case key.Matches(msg, m.keys.MasterUp):
		m.nudge(radio.Master, levelStep)
	case key.Matches(msg, m.keys.MasterDown):
		m.nudge(radio.Master, -levelStep)
	}
	return m, nil
}

// play runs off the update loop: it blocks on opening the speaker and
// dialing the stream.
func (m model) play() tea.Msg {
	return playDoneMsg{err: m.player.Play(context.Background())}
}

func (m *model) toggle(c radio.Channel) {
	if _, err := m.player.ToggleAmbient(c); err != nil {
		m.err = err
	}
}

// nudge moves a level by delta, keeping it inside the slider range.
func (m *model) nudge(c radio.Channel, delta float64) {
	v := m.player.Graph.Level(c) + delta
	v = math.Round(math.Max(0, math.Min(1, v))*100) / 100
	if err := m.player.Graph.SetChannelGain(c, v); err != nil {
		m.err = err
	}
}

// applyConfig takes over levels and the stream URL from a reloaded file.
// The new stream URL is picked up by the next play.
func (m *model) applyConfig(cfg config.Config) {
	for c, v := range cfg.Levels.ByChannel() {
		if err := m.player.Graph.SetChannelGain(c, v); err != nil {
			m.log.Warn().Err(err).Msg("apply level")
		}
	}
	m.player.Session.SetStreamURL(cfg.StreamURL)
	m.log.Info().Msg("applied reloaded config")
}
