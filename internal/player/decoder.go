// SPDX-License-Identifier: MIT

// Package player decodes a music file and plays it through the system
// output while the collector taps every pulled sample. All decoders
// normalize to interleaved signed 16-bit little-endian PCM so the tap
// and the output device see one format regardless of source codec.
package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Decoder is a pull-based s16le PCM stream with format metadata.
// It satisfies the collector tap's Stream interface.
type Decoder interface {
	io.Reader
	SampleRate() int
	ChannelCount() int
}

// NewDecoder detects the format by file extension and returns the
// matching decoder.
func NewDecoder(f *os.File) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

// --- MP3 ---

// go-mp3 already emits s16le stereo, so this decoder is a thin shim.
type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) SampleRate() int            { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int          { return 2 }

// --- WAV ---

type wavDecoder struct {
	dec     *wav.Decoder
	intBuf  *goaudio.IntBuffer
	pending []byte
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	return &wavDecoder{
		dec: dec,
		intBuf: &goaudio.IntBuffer{
			Format:         dec.Format(),
			Data:           make([]int, 2048),
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		n, err := d.dec.PCMBuffer(d.intBuf)
		if n == 0 {
			if err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		bitDepth := int(d.dec.BitDepth)
		for _, v := range d.intBuf.Data[:n] {
			d.pending = binary.LittleEndian.AppendUint16(d.pending, uint16(rescaleTo16(v, bitDepth)))
		}
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *wavDecoder) SampleRate() int   { return int(d.dec.SampleRate) }
func (d *wavDecoder) ChannelCount() int { return int(d.dec.NumChans) }

// rescaleTo16 converts a PCM sample at the given source bit depth to
// signed 16-bit. 8-bit WAV samples are unsigned per the format.
func rescaleTo16(v, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(v)
	case bitDepth == 8:
		return int16((v - 128) << 8)
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	default:
		return int16(v << (16 - bitDepth))
	}
}

// --- FLAC ---

type flacDecoder struct {
	stream  *flac.Stream
	pending []byte
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding flac: %w", err)
	}
	return &flacDecoder{stream: stream}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		bitDepth := int(d.stream.Info.BitsPerSample)
		// Subframes are per channel; interleave them back.
		samplesPerChannel := len(frame.Subframes[0].Samples)
		for i := 0; i < samplesPerChannel; i++ {
			for _, sub := range frame.Subframes {
				v := rescaleTo16(int(sub.Samples[i]), bitDepth)
				d.pending = binary.LittleEndian.AppendUint16(d.pending, uint16(v))
			}
		}
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *flacDecoder) SampleRate() int   { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) ChannelCount() int { return int(d.stream.Info.NChannels) }

// --- Ogg Vorbis ---

type oggDecoder struct {
	reader   *oggvorbis.Reader
	floatBuf []float32
	pending  []byte
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding ogg: %w", err)
	}
	return &oggDecoder{
		reader:   reader,
		floatBuf: make([]float32, 2048),
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		n, err := d.reader.Read(d.floatBuf)
		if n == 0 {
			if err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		for _, v := range d.floatBuf[:n] {
			d.pending = binary.LittleEndian.AppendUint16(d.pending, uint16(clampFloatTo16(v)))
		}
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }

func clampFloatTo16(v float32) int16 {
	scaled := v * 32767
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}
