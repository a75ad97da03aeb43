// SPDX-License-Identifier: MIT

// Package config holds the runtime configuration for the renderer's
// audio analysis pipeline, loaded from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"physarum/pkg/bitint"
)

// Boundaries and defaults for the analysis pipeline.
const (
	// DefaultWindowSize is the number of samples per analysis window.
	// Must be a power of two. 2048 at 44.1 kHz gives ~21.5 Hz bins,
	// enough to separate the sub-bass and bass bands.
	DefaultWindowSize = 2048
	MaxWindowSize     = 8192

	DefaultFrameRate = 60 // Analysis passes requested per second.

	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 512
	DefaultInputChannels   = 2

	MinDeviceID   = -1 // -1 selects the system default input device.
	MinSampleRate = 8000
	MaxSampleRate = 192000
)

// Config is the root application configuration.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Audio     AudioConfig     `yaml:"audio"`
	Frame     FrameConfig     `yaml:"frame"`
	Transport TransportConfig `yaml:"transport"`
	Presets   PresetsConfig   `yaml:"presets"`
}

// AudioConfig holds capture and analysis settings.
type AudioConfig struct {
	WindowSize      int     `yaml:"window_size"`       // Samples per FFT window (power of two).
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	InputChannels   int     `yaml:"input_channels"`    // Channels to capture in live-input mode.
	SampleRate      float64 `yaml:"sample_rate"`       // Capture sample rate in Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Capture callback buffer size.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device.
}

// FrameConfig drives the analysis/publish cadence.
type FrameConfig struct {
	Rate int `yaml:"rate"` // Target frames per second.
}

// TransportConfig controls how band vectors leave the process.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketPort    string        `yaml:"websocket_port"`
	MinSendInterval  time.Duration `yaml:"min_send_interval"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
}

// PresetsConfig locates the settings preset file.
type PresetsConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			WindowSize:      DefaultWindowSize,
			InputDevice:     MinDeviceID,
			InputChannels:   DefaultInputChannels,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
		},
		Frame: FrameConfig{
			Rate: DefaultFrameRate,
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketPort:    "8080",
			MinSendInterval:  16 * time.Millisecond,
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
		Presets: PresetsConfig{
			Path: "presets.json",
		},
	}
}

// Load reads configuration from the YAML file at path. An empty path
// searches the default candidates; when no file is found the built-in
// defaults are used. Environment overrides are applied after the file,
// and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{"physarum.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants that the rest of the pipeline assumes.
func (c *Config) Validate() error {
	if !bitint.IsPowerOfTwo(c.Audio.WindowSize) {
		return fmt.Errorf("audio.window_size %d must be a power of two", c.Audio.WindowSize)
	}
	if c.Audio.WindowSize > MaxWindowSize {
		return fmt.Errorf("audio.window_size %d exceeds maximum %d", c.Audio.WindowSize, MaxWindowSize)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.InputChannels < 1 {
		return fmt.Errorf("audio.input_channels must be at least 1")
	}
	if c.Frame.Rate < 1 {
		return fmt.Errorf("frame.rate must be at least 1")
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTargetAddress == "" {
		return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
	}
	return nil
}

// Environment overrides take precedence over both defaults and the
// config file. PHYSARUM_* names mirror the YAML keys.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("PHYSARUM_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("PHYSARUM_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("PHYSARUM_WINDOW_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Audio.WindowSize = n
		}
	}
	if val, ok := os.LookupEnv("PHYSARUM_WEBSOCKET_PORT"); ok {
		c.Transport.WebSocketPort = val
	}
	if val, ok := os.LookupEnv("PHYSARUM_PRESETS_PATH"); ok {
		c.Presets.Path = val
	}
}
