// SPDX-License-Identifier: MIT

// Package settings models the tunable simulation parameters, the
// per-band audio-reactive deltas layered on top of them, and the preset
// store that persists both to disk.
package settings

import (
	"math"
	"math/rand/v2"
)

// PointSettings are the per-particle simulation parameters uploaded to
// the compute pipeline each frame. sd = sensor distance, sa = sensor
// angle, ra = rotation angle, md = move distance; each has a base,
// amplitude and exponent term.
type PointSettings struct {
	DefaultScalingFactor float32 `json:"dsf"`
	SDBase               float32 `json:"sd0"`
	SDAmplitude          float32 `json:"sda"`
	SDExponent           float32 `json:"sde"`
	SABase               float32 `json:"sa0"`
	SAAmplitude          float32 `json:"saa"`
	SAExponent           float32 `json:"sae"`
	RABase               float32 `json:"ra0"`
	RAAmplitude          float32 `json:"raa"`
	RAExponent           float32 `json:"rae"`
	MDBase               float32 `json:"md0"`
	MDAmplitude          float32 `json:"mda"`
	MDExponent           float32 `json:"mde"`
	SensorBias1          float32 `json:"sb1"`
	SensorBias2          float32 `json:"sb2"`
}

// fields returns the parameters in a fixed order so arithmetic and
// parameter selection can be written once.
func (s *PointSettings) fields() []*float32 {
	return []*float32{
		&s.DefaultScalingFactor,
		&s.SDBase, &s.SDAmplitude, &s.SDExponent,
		&s.SABase, &s.SAAmplitude, &s.SAExponent,
		&s.RABase, &s.RAAmplitude, &s.RAExponent,
		&s.MDBase, &s.MDAmplitude, &s.MDExponent,
		&s.SensorBias1, &s.SensorBias2,
	}
}

// Add returns s + o field-wise.
func (s PointSettings) Add(o PointSettings) PointSettings {
	out := s
	of := o.fields()
	for i, f := range out.fields() {
		*f += *of[i]
	}
	return out
}

// Scale returns s with every field multiplied by k.
func (s PointSettings) Scale(k float32) PointSettings {
	out := s
	for _, f := range out.fields() {
		*f *= k
	}
	return out
}

// RandomBase draws every parameter from a piecewise distribution tuned
// for visually interesting simulations: usually zero or a small
// positive value, occasionally negative.
func RandomBase() PointSettings {
	var out PointSettings
	for _, f := range out.fields() {
		*f = sampleBaseSetting()
	}
	return out
}

// sampleBaseSetting draws from a custom CDF: 30% exactly zero, 63%
// exponential with lambda=1, 7% a negative tail of the form
// ln(u/lambda)/lambda with lambda=2, never closer to zero than
// ln(1/2)/2. Inverse CDF sampling uses a value in (0, 1] so log(0)
// cannot occur.
func sampleBaseSetting() float32 {
	decision := rand.Float64()
	switch {
	case decision < 0.3:
		return 0
	case decision < 0.93:
		cdf := 1 - rand.Float64()
		return float32(-math.Log(cdf))
	default:
		cdf := 1 - rand.Float64()
		return float32(math.Log(cdf/2) / 2)
	}
}
