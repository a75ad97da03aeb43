// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"

	"physarum/pkg/utils"
)

const (
	testWindowSize = 2048
	testSampleRate = 44100
)

// binFrequency returns a frequency that lands exactly on FFT bin k, so
// tone tests are free of spectral leakage.
func binFrequency(k int) float64 {
	return float64(k) * testSampleRate / testWindowSize
}

func TestNewAnalyzerRejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for window size 1000")
		}
	}()
	NewAnalyzer(1000)
}

func TestAnalyzeZeroSampleRate(t *testing.T) {
	a := NewAnalyzer(testWindowSize)
	samples := utils.GenerateSineWave(testWindowSize, testSampleRate, 440)

	out := a.Analyze(samples, 0)
	for b, v := range out {
		if v != 0 {
			t.Errorf("band %d: expected 0 before any stream format, got %f", b, v)
		}
	}
}

func TestAnalyzeSilence(t *testing.T) {
	a := NewAnalyzer(testWindowSize)
	samples := make([]float32, testWindowSize)

	out := a.Analyze(samples, testSampleRate)
	for b, v := range out {
		if v != 0 {
			t.Errorf("band %d: expected 0 for silence, got %f", b, v)
		}
	}
}

func TestAnalyzeToneLandsInBand(t *testing.T) {
	tests := []struct {
		name string
		bin  int
		band int
	}{
		{"sub-bass", 3, 0},    // ~64.6 Hz
		{"bass", 7, 1},        // ~150.7 Hz
		{"low-mids", 14, 2},   // ~301.5 Hz
		{"mids", 47, 3},       // ~1012.1 Hz
		{"high-mids", 186, 4}, // ~4005.4 Hz
		{"highs", 372, 5},     // ~8010.8 Hz
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAnalyzer(testWindowSize)
			samples := utils.GenerateSineWave(testWindowSize, testSampleRate, binFrequency(tc.bin))

			out := a.Analyze(samples, testSampleRate)
			if peak := utils.FindPeakBand(out[:]); peak != tc.band {
				t.Fatalf("expected peak in band %d, got %d (%v)", tc.band, peak, out)
			}
		})
	}
}

func TestAnalyzeToneDominatesOtherBands(t *testing.T) {
	a := NewAnalyzer(testWindowSize)
	samples := utils.GenerateSineWave(testWindowSize, testSampleRate, binFrequency(47))

	out := a.Analyze(samples, testSampleRate)
	mids := out[3]
	if mids <= 0 {
		t.Fatal("tone produced no energy in its band")
	}
	for b, v := range out {
		if b == 3 {
			continue
		}
		if v*10 > mids {
			t.Errorf("band %d (%f) within 10x of mids (%f)", b, v, mids)
		}
	}
}

func TestAnalyzeOffBinToneDominates(t *testing.T) {
	// 1000 Hz falls between bins (~46.4), the worst case for leakage:
	// without windowing the rectangular sidelobes flood the narrow low
	// bands, whose few-bin means then rival the mids mean.
	a := NewAnalyzer(testWindowSize)
	samples := utils.GenerateSineWave(testWindowSize, testSampleRate, 1000)

	out := a.Analyze(samples, testSampleRate)
	mids := out[3]
	if mids <= 0 {
		t.Fatal("tone produced no energy in its band")
	}
	for b, v := range out {
		if b == 3 {
			continue
		}
		if v*10 > mids {
			t.Errorf("band %d (%f) within 10x of mids (%f)", b, v, mids)
		}
	}
}

func TestAnalyzeNyquistToneLeavesLowBandsClean(t *testing.T) {
	// Alternating full-scale samples form a tone at the Nyquist
	// frequency. Its coefficient is excluded from the bin array, so
	// no band, least of all sub-bass, should register it.
	a := NewAnalyzer(testWindowSize)
	samples := make([]float32, testWindowSize)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0.9
		} else {
			samples[i] = -0.9
		}
	}

	out := a.Analyze(samples, testSampleRate)
	for b, v := range out {
		if v > 0.01 {
			t.Errorf("band %d: Nyquist energy leaked in: %f", b, v)
		}
	}
}

func TestAnalyzeClampsPathologicalSampleRate(t *testing.T) {
	a := NewAnalyzer(testWindowSize)
	samples := utils.GenerateSineWave(testWindowSize, testSampleRate, 440)

	// At 100 Hz most band bounds map past the last bin. The analyzer
	// should degrade to clamped buckets, never index out of range.
	out := a.Analyze(samples, 100)
	_ = out

	if a.ClampCount() == 0 {
		t.Error("expected clamped band indices at 100 Hz sample rate")
	}
}

func TestBandsCoverSpectrumContiguously(t *testing.T) {
	if len(Bands) != NumBands {
		t.Fatalf("expected %d bands, got %d", NumBands, len(Bands))
	}
	for i := 1; i < len(Bands); i++ {
		if Bands[i].LowHz != Bands[i-1].HighHz {
			t.Errorf("gap between %q (ends %f) and %q (starts %f)",
				Bands[i-1].Name, Bands[i-1].HighHz, Bands[i].Name, Bands[i].LowHz)
		}
	}
	if Bands[0].LowHz != 20 {
		t.Errorf("expected spectrum to start at 20 Hz, got %f", Bands[0].LowHz)
	}
	if Bands[NumBands-1].HighHz != 10000 {
		t.Errorf("expected spectrum to end at 10000 Hz, got %f", Bands[NumBands-1].HighHz)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	a := NewAnalyzer(testWindowSize)
	samples := utils.GenerateSineWave(testWindowSize, testSampleRate, 440)

	b.ReportAllocs()
	for b.Loop() {
		a.Analyze(samples, testSampleRate)
	}
}
