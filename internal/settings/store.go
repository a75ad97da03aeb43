// SPDX-License-Identifier: MIT
package settings

import (
	"encoding/json"
	"fmt"
	"os"

	"physarum/internal/analysis"
)

// DisplaySettings pairs the value a parameter currently holds with the
// step applied when the user nudges it.
type DisplaySettings struct {
	Current   PointSettings `json:"current"`
	Increment PointSettings `json:"increment"`
}

// Settings is one complete simulation configuration: the base point
// parameters plus one audio-reactive delta per frequency band.
type Settings struct {
	Base DisplaySettings                    `json:"base"`
	FFT  [analysis.NumBands]DisplaySettings `json:"fft"`
}

// Combined resolves the point parameters for one frame: the base
// values plus each band's delta scaled by that band's magnitude.
func (s *Settings) Combined(bins [analysis.NumBands]float32) PointSettings {
	out := s.Base.Current
	for i := range s.FFT {
		out = out.Add(s.FFT[i].Current.Scale(bins[i]))
	}
	return out
}

// defaultIncrement is the initial nudge step for every parameter.
const defaultIncrement = 0.1

func incrementDefaults() PointSettings {
	var out PointSettings
	for _, f := range out.fields() {
		*f = defaultIncrement
	}
	return out
}

// DefaultSettings returns the built-in starting configuration: a
// conservative base preset with zeroed audio-reactive deltas.
func DefaultSettings() Settings {
	s := Settings{
		Base: DisplaySettings{
			Current: PointSettings{
				DefaultScalingFactor: 0.25,
				SDBase:               15,
				SDAmplitude:          6,
				SDExponent:           1.2,
				SABase:               6,
				SAAmplitude:          2,
				SAExponent:           1,
				RABase:               0.1,
				RAAmplitude:          0.05,
				RAExponent:           1,
				MDBase:               2.5,
				MDAmplitude:          1,
				MDExponent:           0.8,
				SensorBias1:          1,
			},
			Increment: incrementDefaults(),
		},
	}
	for i := range s.FFT {
		s.FFT[i].Increment = incrementDefaults()
	}
	return s
}

// RandomSettings draws a fresh base configuration; the audio-reactive
// deltas start zeroed so randomization never produces a strobing mess.
func RandomSettings() Settings {
	s := DefaultSettings()
	s.Base.Current = RandomBase()
	return s
}

// Store holds the working settings plus the preset list they were
// pulled from. Only the presets are ever persisted.
type Store struct {
	path     string
	settings Settings
	presets  []Settings
	index    int
	dirty    bool
}

// NewStore loads presets from path, or starts from the built-in
// default when the file does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.presets = []Settings{DefaultSettings()}
	case err != nil:
		return nil, fmt.Errorf("reading presets: %w", err)
	default:
		if err := json.Unmarshal(data, &s.presets); err != nil {
			return nil, fmt.Errorf("parsing presets: %w", err)
		}
		if len(s.presets) == 0 {
			s.presets = []Settings{DefaultSettings()}
		}
	}

	s.settings = s.presets[0]
	return s, nil
}

// Save writes the preset list to the store's path.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.presets, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding presets: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing presets: %w", err)
	}
	return nil
}

// Settings returns the working configuration.
func (s *Store) Settings() *Settings {
	return &s.settings
}

// Index returns the selected preset index.
func (s *Store) Index() int { return s.index }

// Dirty reports whether the working settings differ from the selected
// preset.
func (s *Store) Dirty() bool { return s.dirty }

// Count returns the number of presets.
func (s *Store) Count() int { return len(s.presets) }

// Next selects the following preset, wrapping around, and discards any
// uncommitted changes.
func (s *Store) Next() {
	s.setIndex((s.index + 1) % len(s.presets))
}

// Prev selects the previous preset, wrapping around, and discards any
// uncommitted changes.
func (s *Store) Prev() {
	s.setIndex((s.index - 1 + len(s.presets)) % len(s.presets))
}

// Commit saves the working settings into the selected preset.
func (s *Store) Commit() {
	s.presets[s.index] = s.settings
	s.dirty = false
}

// Duplicate inserts a copy of the working settings after the selected
// preset and selects it.
func (s *Store) Duplicate() {
	s.index++
	s.presets = append(s.presets[:s.index],
		append([]Settings{s.settings}, s.presets[s.index:]...)...)
	s.dirty = false
}

// Reset discards the working settings in favor of the selected preset.
func (s *Store) Reset() {
	s.settings = s.presets[s.index]
	s.dirty = false
}

// Delete removes the selected preset. The last remaining preset cannot
// be deleted.
func (s *Store) Delete() {
	if len(s.presets) <= 1 {
		return
	}
	s.presets = append(s.presets[:s.index], s.presets[s.index+1:]...)
	if s.index >= len(s.presets) {
		s.index = len(s.presets) - 1
	}
	s.setIndex(s.index)
}

// Randomize replaces the working settings with a random draw.
func (s *Store) Randomize() {
	s.settings = RandomSettings()
	s.dirty = true
}

// MarkDirty flags the working settings as diverged from the preset.
// Called by whoever mutates Settings() in place.
func (s *Store) MarkDirty() { s.dirty = true }

func (s *Store) setIndex(index int) {
	s.index = index
	s.settings = s.presets[index]
	s.dirty = false
}
