package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play       key.Binding
	Rain       key.Binding
	Vinyl      key.Binding
	Mute       key.Binding
	MainUp     key.Binding
	MainDown   key.Binding
	MasterUp   key.Binding
	MasterDown key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Rain, k.Vinyl, k.Mute, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Mute, k.Quit},
		{k.Rain, k.Vinyl},
		{k.MainUp, k.MainDown, k.MasterUp, k.MasterDown},
	}
}

var keys = keyMap{
	Play:       key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
	Rain:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rain")),
	Vinyl:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vinyl")),
	Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	MainUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "music +")),
	MainDown:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "music -")),
	MasterUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "master +")),
	MasterDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "master -")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
