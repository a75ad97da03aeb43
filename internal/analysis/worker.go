// SPDX-License-Identifier: MIT
package analysis

import (
	"sync"

	"physarum/internal/audio"
	applog "physarum/internal/log"
)

// Worker is the single consumer of "do another analysis pass" signals.
// It alternates between blocking on the request mailbox and running one
// snapshot + FFT + bucket pass, and publishes each completed band
// vector wholesale into a shared slot.
//
// The request mailbox has capacity one: a submit that finds it full is
// silently dropped. Skipping a pass is always preferable to queueing
// backlog, since the result only drives a real-time display and the
// next frame's submit is the natural retry.
type Worker struct {
	requests chan struct{}
	stop     chan struct{}
	stopOnce sync.Once

	collector *audio.Collector
	analyzer  *Analyzer
	scratch   []float32

	mu     sync.Mutex
	latest [NumBands]float32
}

// NewWorker creates a worker bound to the given collector. Run must be
// started on its own goroutine before Submit is useful.
func NewWorker(collector *audio.Collector) *Worker {
	return &Worker{
		requests:  make(chan struct{}, 1),
		stop:      make(chan struct{}),
		collector: collector,
		analyzer:  NewAnalyzer(collector.WindowSize()),
		scratch:   make([]float32, collector.WindowSize()),
	}
}

// Submit requests another analysis pass without blocking. If a request
// is already pending the new one is discarded (coalescing); worst case
// the display is one analysis cycle stale. The request channel is never
// closed while producers live — a send on a closed channel panics,
// which is the correct fatal outcome for that invariant violation.
func (w *Worker) Submit() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Run loops until Stop is called: block for a work signal, run one
// pass, publish. It must run on a dedicated goroutine. A closed request
// channel means the driving side has torn down state the worker still
// depends on; that is unrecoverable and terminates the process.
func (w *Worker) Run() {
	for {
		select {
		case _, ok := <-w.requests:
			if !ok {
				applog.Fatalf("analysis worker: request channel closed unexpectedly")
			}
			w.runPass()
		case <-w.stop:
			return
		}
	}
}

// Stop signals Run to return after any in-flight pass. Idempotent.
// This is deliberately a separate channel from the work mailbox so
// shutdown can never be coalesced away with a dropped work request.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// runPass executes one analysis cycle: zero the scratch window,
// snapshot the collector, analyze, and replace the published vector.
// The collector lock and the result lock are never held at the same
// time.
func (w *Worker) runPass() {
	clear(w.scratch)
	w.collector.Snapshot(w.scratch)
	sampleRate := w.collector.SampleRate()

	bins := w.analyzer.Analyze(w.scratch, sampleRate)

	w.mu.Lock()
	w.latest = bins
	w.mu.Unlock()
}

// Latest returns the most recently published band vector, by value.
// Before the first completed pass it is all zeros. Readers never see a
// partially written result.
func (w *Worker) Latest() [NumBands]float32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}
