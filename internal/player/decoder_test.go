// SPDX-License-Identifier: MIT
package player

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestNewDecoderUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.aiff")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := NewDecoder(f); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestNewDecoderInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("RIFFgarbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := NewDecoder(f); err == nil {
		t.Fatal("expected error for malformed WAV data")
	}
}

// writeWAV encodes samples as a 16-bit mono WAV file and returns its path.
func writeWAV(t *testing.T, samples []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, 44100, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWAVDecoderRoundTrip(t *testing.T) {
	samples := []int{0, 1000, -1000, 32767, -32768, 12345}
	path := writeWAV(t, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := NewDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate() != 44100 {
		t.Errorf("expected 44100 Hz, got %d", dec.SampleRate())
	}
	if dec.ChannelCount() != 1 {
		t.Errorf("expected mono, got %d channels", dec.ChannelCount())
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(data))
	}
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(data[2*i:]))
		if int(got) != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestWAVDecoderSmallReads(t *testing.T) {
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = i * 100
	}
	path := writeWAV(t, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := NewDecoder(f)
	if err != nil {
		t.Fatal(err)
	}

	// Pull one byte at a time; sample values must survive the
	// re-chunking through the pending buffer.
	var data []byte
	one := make([]byte, 1)
	for {
		n, err := dec.Read(one)
		data = append(data, one[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	if len(data) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(data))
	}
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(data[2*i:]))
		if int(got) != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestRescaleTo16(t *testing.T) {
	tests := []struct {
		name     string
		v        int
		bitDepth int
		want     int16
	}{
		{"16-bit passthrough", 1000, 16, 1000},
		{"16-bit negative", -1000, 16, -1000},
		{"8-bit midpoint", 128, 8, 0},
		{"8-bit max", 255, 8, 32512},
		{"8-bit min", 0, 8, -32768},
		{"24-bit max", 1<<23 - 1, 24, 32767},
		{"24-bit min", -(1 << 23), 24, -32768},
		{"32-bit", 1 << 30, 32, 1 << 14},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := rescaleTo16(tc.v, tc.bitDepth); got != tc.want {
				t.Errorf("rescaleTo16(%d, %d) = %d, want %d", tc.v, tc.bitDepth, got, tc.want)
			}
		})
	}
}

func TestClampFloatTo16(t *testing.T) {
	tests := []struct {
		v    float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-2, -32768},
		{0.5, 16383},
	}

	for _, tc := range tests {
		if got := clampFloatTo16(tc.v); got != tc.want {
			t.Errorf("clampFloatTo16(%f) = %d, want %d", tc.v, got, tc.want)
		}
	}
}
