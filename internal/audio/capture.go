// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"physarum/internal/config"
)

// Initialize sets up the PortAudio subsystem. It must be called before
// any capture operation and paired with a Terminate call.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Capture drives the live-input mode: a PortAudio input stream whose
// callback feeds interleaved samples straight into the collector. The
// callback is the real-time hot path; it performs no allocation and no
// I/O beyond the collector's short mutex hold.
type Capture struct {
	cfg       config.AudioConfig
	collector *Collector
	device    *portaudio.DeviceInfo
	latency   time.Duration
	stream    *portaudio.Stream

	channels    int
	nextChannel int
}

// NewCapture resolves the input device and prepares a capture bound to
// the given collector. The stream is not started yet.
func NewCapture(cfg config.AudioConfig, collector *Collector) (*Capture, error) {
	device, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		cfg:       cfg,
		collector: collector,
		device:    device,
		channels:  cfg.InputChannels,
	}

	if cfg.LowLatency {
		c.latency = device.DefaultLowInputLatency
	} else {
		c.latency = device.DefaultHighInputLatency
	}

	return c, nil
}

// Start opens and starts the input stream. The collector is reset to
// the stream's format before the first callback fires.
func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.cfg.InputChannels,
			Device:   c.device,
			Latency:  c.latency,
		},
		FramesPerBuffer: c.cfg.FramesPerBuffer,
		SampleRate:      c.cfg.SampleRate,
	}

	c.collector.OnFormatChange(c.cfg.InputChannels, int(c.cfg.SampleRate))
	c.nextChannel = 0

	stream, err := portaudio.OpenStream(params, c.processInput)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		c.stream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

// processInput is the PortAudio callback. Samples arrive interleaved;
// each is forwarded to the collector with its channel index.
func (c *Capture) processInput(in []float32) {
	for _, sample := range in {
		c.collector.Observe(sample, c.nextChannel)
		c.nextChannel++
		if c.nextChannel == c.channels {
			c.nextChannel = 0
		}
	}
}

// Stop stops and closes the input stream. Safe to call when not
// started.
func (c *Capture) Stop() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil {
		return err
	}
	if err := c.stream.Close(); err != nil {
		return err
	}
	c.stream = nil
	return nil
}
