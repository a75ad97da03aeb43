// SPDX-License-Identifier: MIT
package player

import (
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/oto/v3"

	"physarum/internal/audio"
	applog "physarum/internal/log"
)

// The oto context can only be created once per process; its format is
// fixed by the first file played.
var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
)

func initOto(sampleRate, channelCount int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return otoCtx, otoInitErr
}

// Player plays one decoded music file through the system output. The
// output device pulls samples through the collector tap, so every
// sample that reaches the speakers has already been recorded for
// analysis.
type Player struct {
	file      *os.File
	tap       *audio.Tap
	otoPlayer *oto.Player

	mu     sync.Mutex
	paused bool
	closed bool
}

// New opens, decodes and starts playing the file at path, tapping all
// playback samples into collector.
func New(path string, collector *audio.Collector) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening music file: %w", err)
	}

	dec, err := NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto(dec.SampleRate(), dec.ChannelCount())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("initializing audio output: %w", err)
	}

	applog.Infof("player: %s (%d Hz, %d channels)", path, dec.SampleRate(), dec.ChannelCount())

	p := &Player{
		file: f,
		tap:  audio.NewTap(dec, collector),
	}
	p.otoPlayer = ctx.NewPlayer(p.tap)
	p.otoPlayer.Play()

	return p, nil
}

// Toggle flips between playing and paused and reports the new state
// (true when playing).
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	if p.paused {
		p.otoPlayer.Play()
	} else {
		p.otoPlayer.Pause()
	}
	p.paused = !p.paused
	return !p.paused
}

// IsPlaying reports whether playback is currently running.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.paused && !p.closed
}

// Close stops playback and releases the file. Idempotent.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.otoPlayer.Close(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}
