// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	applog "physarum/internal/log"
	"physarum/pkg/bitint"
)

// Analyzer computes per-band mean magnitudes from a window of samples.
// It owns pre-allocated FFT workspace, so a single Analyzer must not be
// used from more than one goroutine; the worker owns one.
type Analyzer struct {
	windowSize int
	fft        *fourier.FFT
	window     []float64
	input      []float64
	coeffs     []complex128
	// Magnitudes for bins 0..windowSize/2-1. The FFT also yields a
	// coefficient at the Nyquist frequency; it is excluded here so it
	// can never bleed into the DC bin's magnitude.
	amps []float64

	clamped uint64
}

// NewAnalyzer creates an analyzer for windows of the given size,
// pre-allocating all FFT workspace and the Hann window coefficients.
// The size must be a power of two; violating that is a programming
// error, not a runtime condition.
func NewAnalyzer(windowSize int) *Analyzer {
	if !bitint.IsPowerOfTwo(windowSize) {
		panic("FFT window size must be a power of two")
	}

	window := make([]float64, windowSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(windowSize-1)))
	}

	return &Analyzer{
		windowSize: windowSize,
		fft:        fourier.NewFFT(windowSize),
		window:     window,
		input:      make([]float64, windowSize),
		coeffs:     make([]complex128, windowSize/2+1),
		amps:       make([]float64, windowSize/2),
	}
}

// Analyze computes the Hann-windowed real FFT of samples and buckets
// bin magnitudes into the mean magnitude per defined band. len(samples) must equal the
// window size. Callers should treat the sample buffer as consumed after
// the call and supply a fresh snapshot per pass.
//
// One FFT bin spans sampleRate/windowSize Hz. Band bounds are converted
// to bin indices and clamped into the valid range, so an anomalously
// low reported sample rate degrades to a slightly wrong bucket value
// instead of an out-of-bounds access. A sample rate of zero (no stream
// format seen yet) yields an all-zero vector.
func (a *Analyzer) Analyze(samples []float32, sampleRate int) [NumBands]float32 {
	var out [NumBands]float32
	if sampleRate <= 0 {
		return out
	}

	// Hann window. A tone rarely lands exactly on a bin; without the
	// window, rectangular leakage from a loud tone floods the narrow
	// low bands, whose few-bin means then rival the tone's own band.
	for i, s := range samples {
		a.input[i] = float64(s) * a.window[i]
	}
	a.fft.Coefficients(a.coeffs, a.input)
	for i := range a.amps {
		a.amps[i] = cmplx.Abs(a.coeffs[i])
	}

	resolution := float64(sampleRate) / float64(a.windowSize)

	for b, band := range Bands {
		lo := a.clampIndex(int(math.Floor(band.LowHz / resolution)))
		hi := a.clampIndex(int(math.Ceil(band.HighHz / resolution)))

		if hi <= lo {
			// Zero-width after clamping: report the boundary bin
			// rather than dividing by zero.
			out[b] = float32(a.amps[lo])
			continue
		}

		var sum float64
		for i := lo; i < hi; i++ {
			sum += a.amps[i]
		}
		out[b] = float32(sum / float64(hi-lo))
	}

	return out
}

func (a *Analyzer) clampIndex(i int) int {
	if i < 0 {
		a.noteClamp()
		return 0
	}
	if i > len(a.amps)-1 {
		a.noteClamp()
		return len(a.amps) - 1
	}
	return i
}

// noteClamp records an out-of-range band index. The root cause is a bad
// sample-rate report from the decoder, outside this package's control;
// the clamp is tolerated imprecision, not an error.
func (a *Analyzer) noteClamp() {
	a.clamped++
	if a.clamped == 1 || a.clamped%1000 == 0 {
		applog.Debugf("analysis: band index clamped (%d occurrences)", a.clamped)
	}
}

// ClampCount returns how many band indices have been clamped since
// creation. Diagnostic only.
func (a *Analyzer) ClampCount() uint64 {
	return a.clamped
}
