// Package codec reads and writes partial sets in the text (.utu, JSON) and
// binary (.ut2, valuetree) file formats.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
)

// Format type tags written into the "type" field.
const (
	TypeJSON   = "VutuPartials"
	TypeBinary = "VutuPartials2"
)

var (
	// ErrTrackShape is returned when a track's arrays differ in length.
	ErrTrackShape = errors.New("codec: track arrays differ in length")
	// ErrNotObject is returned when a JSON document is not an object.
	ErrNotObject = errors.New("codec: JSON root is not an object")
)

// scalarFields lists the numeric provenance fields in file order, after
// version, type and source.
var scalarFields = []struct {
	name string
	ptr  func(*partials.Provenance) *float32
}{
	{"source_duration", func(p *partials.Provenance) *float32 { return &p.SourceDuration }},
	{"resolution", func(p *partials.Provenance) *float32 { return &p.Params.Resolution }},
	{"window_width", func(p *partials.Provenance) *float32 { return &p.Params.WindowWidth }},
	{"amp_floor", func(p *partials.Provenance) *float32 { return &p.Params.AmpFloor }},
	{"freq_drift", func(p *partials.Provenance) *float32 { return &p.Params.FreqDrift }},
	{"lo_cut", func(p *partials.Provenance) *float32 { return &p.Params.LoCut }},
	{"hi_cut", func(p *partials.Provenance) *float32 { return &p.Params.HiCut }},
	{"fundamental", func(p *partials.Provenance) *float32 { return &p.Params.Fundamental }},
}

func scalarField(p *partials.Provenance, name string) *float32 {
	for _, f := range scalarFields {
		if f.name == name {
			return f.ptr(p)
		}
	}
	return nil
}

// fileVersion returns the version to write for s. Sets that never had one
// get FileVersion.
func fileVersion(s *partials.Set) float32 {
	if s.Version == 0 {
		return partials.FileVersion
	}
	return s.Version
}

// Per-track array names in file order.
var arrayNames = [5]string{"time", "amp", "freq", "bw", "phase"}

func arrayIndex(name string) int {
	for i, n := range arrayNames {
		if n == name {
			return i
		}
	}
	return -1
}

func trackArrays(t partials.Track) [5][]float32 {
	return [5][]float32{t.Time, t.Amp, t.Freq, t.Bandwidth, t.Phase}
}

// trackKey returns the object key of track i.
func trackKey(i int) string { return "p" + strconv.Itoa(i) }

// trackIndex parses a key written by trackKey.
func trackIndex(key string) (int, bool) {
	digits, ok := strings.CutPrefix(key, "p")
	if !ok || digits == "" {
		return 0, false
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 || strconv.Itoa(i) != digits {
		return 0, false
	}
	return i, true
}

// assembleTrack builds a track from decoded arrays. Arrays that were absent
// are zero-filled to the length of time; present arrays must all match it.
func assembleTrack(key string, arrays [5][]float32, present [5]bool) (partials.Track, error) {
	n := len(arrays[0])
	for i := range arrays {
		if present[i] {
			if len(arrays[i]) != n {
				return partials.Track{}, fmt.Errorf("%w: %s.%s has %d values, time has %d",
					ErrTrackShape, key, arrayNames[i], len(arrays[i]), n)
			}
			continue
		}
		if i > 0 {
			monitoring.Logf("codec: %s has no %q array, filling %d zeros", key, arrayNames[i], n)
		}
		arrays[i] = make([]float32, n)
	}
	return partials.Track{
		Time:      arrays[0],
		Amp:       arrays[1],
		Freq:      arrays[2],
		Bandwidth: arrays[3],
		Phase:     arrays[4],
	}, nil
}
