// SPDX-License-Identifier: MIT

// Package transport publishes completed band vectors to out-of-process
// consumers (visualization overlays, external tooling). Implementations
// must never block the frame loop: a frame that cannot be delivered is
// dropped.
package transport

import applog "physarum/internal/log"

// Transport delivers one band vector per call. Implementations must be
// safe for repeated calls from a single frame loop goroutine.
type Transport interface {
	Send(bands []float32) error
	Close() error
}

// Multi fans a frame out to several transports. Send errors are logged
// and swallowed so one slow consumer cannot halt the others.
type Multi []Transport

func (m Multi) Send(bands []float32) error {
	for _, t := range m {
		if err := t.Send(bands); err != nil {
			applog.Warnf("transport: send failed: %v", err)
		}
	}
	return nil
}

func (m Multi) Close() error {
	var firstErr error
	for _, t := range m {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Logging is a debug transport that writes band vectors to the log.
type Logging struct{}

func (Logging) Send(bands []float32) error {
	applog.Debugf("bands: %v", bands)
	return nil
}

func (Logging) Close() error { return nil }

var _ Transport = Multi(nil)
var _ Transport = Logging{}
