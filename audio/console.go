//go:build js
// +build js

package audio

import (
	"strings"

	"github.com/gopherjs/gopherjs/js"
	"github.com/rs/zerolog"
)

// ConsoleWriter sends zerolog output to the browser console, picking
// console.warn / console.error by level.
type ConsoleWriter struct{}

func (ConsoleWriter) Write(p []byte) (int, error) {
	return ConsoleWriter{}.WriteLevel(zerolog.InfoLevel, p)
}

func (ConsoleWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	method := "log"
	switch {
	case level >= zerolog.ErrorLevel && level != zerolog.NoLevel:
		method = "error"
	case level == zerolog.WarnLevel:
		method = "warn"
	case level <= zerolog.DebugLevel:
		method = "debug"
	}
	js.Global.Get("console").Call(method, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// NewLogger returns a logger that writes to the console at lvl.
func NewLogger(lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(ConsoleWriter{}).Level(lvl).With().Timestamp().Logger()
}
