// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"io"
)

// Stream is a pull-based interleaved s16le PCM source, as produced by
// the player's decoders. ChannelCount and SampleRate may change
// mid-stream if the upstream decoder renegotiates.
type Stream interface {
	io.Reader
	SampleRate() int
	ChannelCount() int
}

// Tap wraps a Stream and records every pulled sample into a Collector.
// Reads pass through byte-for-byte, so playback audio is never altered.
// Tap is itself a Stream and slots between a decoder and the audio
// output without either side knowing.
type Tap struct {
	inner     Stream
	collector *Collector

	nextChannel int
	channels    int
	sampleRate  int

	// A Read may end mid-sample; the dangling byte is carried into the
	// next Read so sample framing survives arbitrary chunk boundaries.
	carry    byte
	hasCarry bool
}

// NewTap wraps inner, recording into collector. The collector's format
// is initialized from the stream's current channel count and rate.
func NewTap(inner Stream, collector *Collector) *Tap {
	t := &Tap{inner: inner, collector: collector}
	t.syncFormat()
	return t
}

func (t *Tap) Read(p []byte) (int, error) {
	n, err := t.inner.Read(p)
	if n > 0 {
		t.syncFormat()
		t.inspect(p[:n])
	}
	return n, err
}

func (t *Tap) SampleRate() int   { return t.inner.SampleRate() }
func (t *Tap) ChannelCount() int { return t.inner.ChannelCount() }

// syncFormat detects upstream format renegotiation and resets the
// collector. Interleave phase and any half-read sample are discarded
// with the history.
func (t *Tap) syncFormat() {
	channels := t.inner.ChannelCount()
	rate := t.inner.SampleRate()
	if channels == t.channels && rate == t.sampleRate {
		return
	}
	t.channels = channels
	t.sampleRate = rate
	t.nextChannel = 0
	t.hasCarry = false
	t.collector.OnFormatChange(channels, rate)
}

func (t *Tap) inspect(data []byte) {
	if t.channels == 0 {
		// No channels reported yet; recording would divide by zero in
		// the interleave arithmetic.
		return
	}

	i := 0
	if t.hasCarry {
		t.observe(int16(uint16(t.carry) | uint16(data[0])<<8))
		t.hasCarry = false
		i = 1
	}
	for ; i+1 < len(data); i += 2 {
		t.observe(int16(binary.LittleEndian.Uint16(data[i : i+2])))
	}
	if i < len(data) {
		t.carry = data[i]
		t.hasCarry = true
	}
}

func (t *Tap) observe(v int16) {
	t.collector.Observe(float32(v)/32768, t.nextChannel)
	t.nextChannel++
	if t.nextChannel == t.channels {
		t.nextChannel = 0
	}
}
