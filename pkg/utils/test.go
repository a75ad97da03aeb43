// SPDX-License-Identifier: MIT
package utils

import "math"

// MockTransport implements the Transport interface for testing.
type MockTransport struct {
	LastBands []float32
	SendCount int
}

// Send stores the bands for later inspection instead of transmitting.
func (m *MockTransport) Send(bands []float32) error {
	m.LastBands = make([]float32, len(bands))
	copy(m.LastBands, bands)
	m.SendCount++
	return nil
}

func (m *MockTransport) Close() error { return nil }

// GenerateSineWave produces a mono float32 tone at the given frequency.
func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2 * math.Pi * frequency * t) * 0.9)
	}
	return buffer
}

// GenerateSineWavePCM produces the same tone as interleaved signed
// 16-bit little-endian bytes, one channel.
func GenerateSineWavePCM(size int, sampleRate, frequency float64) []byte {
	buffer := make([]byte, size*2)
	for i := 0; i < size; i++ {
		t := float64(i) / sampleRate
		v := int16(math.Sin(2*math.Pi*frequency*t) * 0.9 * math.MaxInt16)
		buffer[2*i] = byte(v)
		buffer[2*i+1] = byte(v >> 8)
	}
	return buffer
}

// FindPeakBand returns the index of the strongest band.
func FindPeakBand(bands []float32) int {
	peak := 0
	for i := 1; i < len(bands); i++ {
		if bands[i] > bands[peak] {
			peak = i
		}
	}
	return peak
}
