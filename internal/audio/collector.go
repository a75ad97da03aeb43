// SPDX-License-Identifier: MIT

// Package audio captures a sliding window of playback (or live input)
// samples for spectral analysis. The collector sits between the sample
// producer and the analysis worker; it never blocks the producer for
// longer than one short mutex hold and never allocates on the sample
// path.
package audio

import (
	"sync"

	"physarum/pkg/bitint"
)

// ring is a fixed-capacity sample history addressed oldest-first.
// It starts zero-filled and "full", so index i is always valid: new
// samples overwrite the oldest slot.
type ring struct {
	buf []float32
	pos int // next write position, also the oldest element
}

func newRing(size int) *ring {
	return &ring{buf: make([]float32, size)}
}

func (r *ring) push(v float32) {
	r.buf[r.pos] = v
	r.pos++
	if r.pos == len(r.buf) {
		r.pos = 0
	}
}

// at returns the sample at lag position i, where 0 is the oldest
// retained sample and len-1 the most recent.
func (r *ring) at(i int) float32 {
	i += r.pos
	if i >= len(r.buf) {
		i -= len(r.buf)
	}
	return r.buf[i]
}

// Collector absorbs an interleaved sample stream into per-channel ring
// buffers holding the most recent windowSize samples, and serves
// point-in-time snapshots to the analysis worker.
//
// One goroutine writes (the playback pull path or the capture
// callback), another reads via Snapshot. A single mutex covers the
// whole buffer set; hold times are short and bounded on both sides.
type Collector struct {
	mu         sync.Mutex
	channels   []*ring
	windowSize int
	sampleRate int
}

// NewCollector creates a collector for windows of the given size.
// The window size must be a power of two; violating that is a
// programming error, not a runtime condition.
func NewCollector(windowSize int) *Collector {
	if !bitint.IsPowerOfTwo(windowSize) {
		panic("collector window size must be a power of two")
	}
	return &Collector{windowSize: windowSize}
}

// WindowSize returns the fixed per-channel history length.
func (c *Collector) WindowSize() int {
	return c.windowSize
}

// Observe records one sample into the ring buffer for channel ch,
// evicting the oldest value. Samples for unknown channels (possible
// for a brief moment around a format change) are dropped.
func (c *Collector) Observe(sample float32, ch int) {
	c.mu.Lock()
	if ch >= 0 && ch < len(c.channels) {
		c.channels[ch].push(sample)
	}
	c.mu.Unlock()
}

// OnFormatChange reinitializes the per-channel buffers for a new
// channel count and caches the new sample rate. This is a destructive
// reset: there is no principled way to remap interleaved history onto
// a different channel layout, so all history is discarded.
func (c *Collector) OnFormatChange(numChannels, sampleRate int) {
	c.mu.Lock()
	c.channels = make([]*ring, numChannels)
	for i := range c.channels {
		c.channels[i] = newRing(c.windowSize)
	}
	c.sampleRate = sampleRate
	c.mu.Unlock()
}

// Snapshot sums, at each lag position, the value across all channel
// buffers into out. The accumulation is additive: callers wanting an
// independent single-shot sum must pre-zero out. len(out) must equal
// WindowSize().
func (c *Collector) Snapshot(out []float32) {
	c.mu.Lock()
	for _, ch := range c.channels {
		for i := range out {
			out[i] += ch.at(i)
		}
	}
	c.mu.Unlock()
}

// SampleRate returns the rate cached at the last format change. It may
// be transiently stale relative to an in-flight format change, which is
// acceptable: it only sizes frequency buckets downstream.
func (c *Collector) SampleRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampleRate
}

// ChannelCount returns the channel count of the current stream.
func (c *Collector) ChannelCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.channels)
}
