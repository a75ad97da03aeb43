// SPDX-License-Identifier: MIT

// Package app wires the frame loop: the cadence at which analysis work
// is requested, results are read back, and the simulation parameters
// and spectrum transports are fed.
package app

import (
	"sync"
	"time"

	"physarum/internal/analysis"
	applog "physarum/internal/log"
	"physarum/internal/settings"
	"physarum/internal/transport"
)

// Sink consumes the combined per-frame point parameters. The GPU
// simulation pipeline implements this; LogSink stands in when no
// renderer is attached.
type Sink interface {
	Apply(points settings.PointSettings)
}

// LogSink reports the combined parameters at debug level.
type LogSink struct{}

func (LogSink) Apply(points settings.PointSettings) {
	applog.Debugf("frame: combined point settings: %+v", points)
}

// Loop is the frame-driving side of the analysis pipeline. Once per
// frame it submits a coalescing work request, reads whatever band
// vector the worker last published, and fans the results out. It never
// waits on the worker.
type Loop struct {
	worker     *analysis.Worker
	store      *settings.Store
	sink       Sink
	transports transport.Transport
	interval   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoop assembles a frame loop ticking frameRate times per second.
func NewLoop(worker *analysis.Worker, store *settings.Store, sink Sink,
	transports transport.Transport, frameRate int) *Loop {
	return &Loop{
		worker:     worker,
		store:      store,
		sink:       sink,
		transports: transports,
		interval:   time.Second / time.Duration(frameRate),
		stop:       make(chan struct{}),
	}
}

// Run ticks until Stop is called. Each tick is non-blocking with
// respect to the worker: the submit coalesces and the read returns the
// most recently completed result, which may repeat across frames while
// a pass is still in flight.
func (l *Loop) Run() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.frame()
		case <-l.stop:
			return
		}
	}
}

func (l *Loop) frame() {
	l.worker.Submit()

	bins := l.worker.Latest()
	l.sink.Apply(l.store.Settings().Combined(bins))

	if l.transports != nil {
		_ = l.transports.Send(bins[:])
	}
}

// Stop signals Run to return. Idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
