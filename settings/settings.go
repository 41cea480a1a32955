// Package settings loads analysis and resynthesis settings from JSON files.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-partials/partials"
)

// ErrOutOfRange is wrapped by every validation failure in ApplyFile.
var ErrOutOfRange = errors.New("settings: value out of range")

// Settings is the full analysis and resynthesis configuration.
type Settings struct {
	Analysis     partials.Params
	NoiseWidth   float32
	OutputGainDB float32
	SampleRate   int
	SourceWAV    string
}

// Default returns the stock settings.
func Default() *Settings {
	return &Settings{
		Analysis: partials.Params{
			Resolution:  40,
			WindowWidth: 80,
			AmpFloor:    -60,
			FreqDrift:   40,
			LoCut:       20,
			HiCut:       20000,
			Fundamental: 220,
		},
		NoiseWidth:   50,
		OutputGainDB: 0,
		SampleRate:   48000,
	}
}

// File is the JSON schema for settings files. Absent fields keep their
// current value.
type File struct {
	Resolution   *float32 `json:"resolution"`
	WindowWidth  *float32 `json:"window_width"`
	AmpFloor     *float32 `json:"amp_floor"`
	FreqDrift    *float32 `json:"freq_drift"`
	LoCut        *float32 `json:"lo_cut"`
	HiCut        *float32 `json:"hi_cut"`
	Fundamental  *float32 `json:"fundamental"`
	NoiseWidth   *float32 `json:"noise_width"`
	OutputGainDB *float32 `json:"output_gain_db"`
	SampleRate   *int     `json:"sample_rate"`
	SourceWAV    string   `json:"source_wav"`
}

// LoadJSON loads a settings file and applies it on top of Default. A
// relative source_wav is resolved against the file's directory.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("settings: %s: %w", path, err)
	}

	s := Default()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}

	if s.SourceWAV != "" && !filepath.IsAbs(s.SourceWAV) {
		s.SourceWAV = filepath.Clean(filepath.Join(filepath.Dir(path), s.SourceWAV))
	}
	return s, nil
}

// ApplyFile applies a parsed settings file onto dst. Every value is range
// checked; on error dst may be partially updated.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	ranged := []struct {
		name   string
		src    *float32
		dst    *float32
		lo, hi float32
	}{
		{"resolution", f.Resolution, &dst.Analysis.Resolution, 8, 1024},
		{"window_width", f.WindowWidth, &dst.Analysis.WindowWidth, 16, 768},
		{"amp_floor", f.AmpFloor, &dst.Analysis.AmpFloor, -90, -20},
		{"freq_drift", f.FreqDrift, &dst.Analysis.FreqDrift, 2, 80},
		{"lo_cut", f.LoCut, &dst.Analysis.LoCut, 20, 2000},
		{"hi_cut", f.HiCut, &dst.Analysis.HiCut, 200, 20000},
		{"fundamental", f.Fundamental, &dst.Analysis.Fundamental, 22, 2200},
		{"noise_width", f.NoiseWidth, &dst.NoiseWidth, 10, 500},
		{"output_gain_db", f.OutputGainDB, &dst.OutputGainDB, -60, 0},
	}
	for _, r := range ranged {
		if r.src == nil {
			continue
		}
		if v := *r.src; v < r.lo || v > r.hi {
			return fmt.Errorf("%w: %s must be in [%g, %g], got %g", ErrOutOfRange, r.name, r.lo, r.hi, v)
		}
		*r.dst = *r.src
	}
	if dst.Analysis.LoCut >= dst.Analysis.HiCut {
		return fmt.Errorf("%w: lo_cut %g must be below hi_cut %g",
			ErrOutOfRange, dst.Analysis.LoCut, dst.Analysis.HiCut)
	}

	if f.SampleRate != nil {
		if *f.SampleRate <= 0 {
			return fmt.Errorf("%w: sample_rate must be > 0", ErrOutOfRange)
		}
		dst.SampleRate = *f.SampleRate
	}
	if f.SourceWAV != "" {
		dst.SourceWAV = strings.TrimSpace(f.SourceWAV)
	}
	return nil
}
