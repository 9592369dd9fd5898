package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simukka/lofi-fm/radio"
	"github.com/simukka/lofi-fm/ui"
)

const barWidth = 20

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e2e8f0")).MarginBottom(1)
	trackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f8fafc"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(1, 2)
)

// View reads straight from the player so a redraw always shows the latest
// state, whatever order the refresh messages arrived in.
func (m model) View() string {
	var (
		b      strings.Builder
		status = m.player.Session.Status().Get()
		np     = m.player.NowPlaying().Get()
	)

	b.WriteString(titleStyle.Render(ui.DefaultTitle))
	b.WriteString("\n")

	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(status.Color())).Render("●")
	b.WriteString(dot + " " + dimStyle.Render(status.String()))
	if m.player.Graph.Muted() {
		b.WriteString(dimStyle.Render(" (muted)"))
	}
	b.WriteString("\n\n")

	b.WriteString(trackStyle.Render(np.Line()) + "\n")
	b.WriteString(dimStyle.Render(ui.ArtistLabel(np)+" · "+ui.TitleLabel(np)) + "\n\n")

	for _, c := range []radio.Channel{radio.Main, radio.Rain, radio.Vinyl, radio.Master} {
		b.WriteString(levelRow(c, m.player.Graph.Level(c)) + "\n")
	}
	b.WriteString("\n")

	for _, c := range radio.AmbientChannels {
		state := m.player.Ambient.State(c)
		label := ui.AmbientLabel(c, state)
		if state == radio.Playing {
			label = onStyle.Render(label)
		}
		b.WriteString(label + "  ")
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	}

	return boxStyle.Render(b.String()) + "\n" + m.help.View(m.keys) + "\n"
}

func levelRow(c radio.Channel, v float64) string {
	label := c.Label()
	if c == radio.Main {
		label = "Music"
	}
	filled := int(v*barWidth + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%-7s %s %3.0f%%", label, bar, v*100)
}
