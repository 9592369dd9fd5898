//go:build !js
// +build !js

package native

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/simukka/lofi-fm/radio"
)

// Buffer is fully decoded PCM in the context's format.
type Buffer struct {
	buf *beep.Buffer
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	return b.buf.Format().SampleRate.D(b.buf.Len()).Seconds()
}

// Len is the number of samples.
func (b *Buffer) Len() int { return b.buf.Len() }

// Decode sniffs the container (WAV, FLAC, Ogg Vorbis, otherwise MP3),
// decodes all of data and resamples it to the context's rate.
func (c *Context) Decode(ctx context.Context, data []byte) (radio.DecodedBuffer, error) {
	stream, format, err := decodeStream(data)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != c.format.SampleRate {
		s = beep.Resample(4, format.SampleRate, c.format.SampleRate, s)
	}

	buf := beep.NewBuffer(c.format)
	buf.Append(s)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Buffer{buf: buf}, nil
}

func decodeStream(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := bytes.NewReader(data)
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return wav.Decode(r)
	case bytes.HasPrefix(data, []byte("fLaC")):
		return flac.Decode(r)
	case bytes.HasPrefix(data, []byte("OggS")):
		return vorbis.Decode(io.NopCloser(r))
	default:
		return mp3.Decode(io.NopCloser(r))
	}
}
