package radio

import "strings"

// Channel identifies a gain node in the mix graph.
type Channel int

const (
	Master Channel = iota
	Main
	Rain
	Vinyl
)

// Channels lists every channel in graph creation order.
var Channels = []Channel{Master, Main, Rain, Vinyl}

// AmbientChannels lists the channels that carry ambient loops.
var AmbientChannels = []Channel{Rain, Vinyl}

func (c Channel) String() string {
	switch c {
	case Master:
		return "master"
	case Main:
		return "main"
	case Rain:
		return "rain"
	case Vinyl:
		return "vinyl"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the graph channels.
func (c Channel) Valid() bool {
	return c >= Master && c <= Vinyl
}

// Ambient reports whether c carries an ambient loop.
func (c Channel) Ambient() bool {
	return c == Rain || c == Vinyl
}

// Label is the capitalized name shown next to channel toggles.
func (c Channel) Label() string {
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseChannel maps a name such as "rain" back to its Channel.
func ParseChannel(name string) (Channel, bool) {
	for _, c := range Channels {
		if strings.EqualFold(c.String(), name) {
			return c, true
		}
	}
	return 0, false
}
