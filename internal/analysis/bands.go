// SPDX-License-Identifier: MIT

// Package analysis turns sliding-window sample snapshots into per-band
// spectrum magnitudes, and hosts the background worker that bridges the
// collector to the frame loop.
package analysis

// NumBands is the fixed length of every published band vector.
const NumBands = 6

// Band is a named frequency range in Hz.
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// Bands lists the frequency ranges rendered by the visualizer and used
// to perturb the simulation, in published order. Fixed at compile time.
var Bands = [NumBands]Band{
	{Name: "sub-bass", LowHz: 20, HighHz: 80},
	{Name: "bass", LowHz: 80, HighHz: 250},
	{Name: "low-mids", LowHz: 250, HighHz: 500},
	{Name: "mids", LowHz: 500, HighHz: 2000},
	{Name: "high-mids", LowHz: 2000, HighHz: 6000},
	{Name: "highs", LowHz: 6000, HighHz: 10000},
}
