// Package session drives the partial set life cycle: analysis output is
// built into a set, filtered, finalized, stamped with provenance, then
// shared with readers or persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-partials/codec"
	"github.com/cwbudde/algo-partials/internal/audioio"
	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
)

// ErrUnknownFormat is returned by Load and Save for paths that end in
// neither .utu nor .ut2.
var ErrUnknownFormat = errors.New("session: unknown partials file extension")

// File extensions of the two persisted formats.
const (
	ExtJSON   = ".utu"
	ExtBinary = ".ut2"
)

// Analyzer turns audio into one breakpoint stream per partial.
type Analyzer interface {
	Analyze(ctx context.Context, samples []float64, sampleRate int, p partials.Params) ([][]partials.Breakpoint, error)
}

// Build copies raw analyzer output into a new Set, one track per stream.
// A set without a type is tagged as text format, the format analysis
// results are first saved in.
func Build(raw [][]partials.Breakpoint, prov partials.Provenance) *partials.Set {
	if prov.Type == "" {
		prov.Type = codec.TypeJSON
	}
	s := partials.NewSet(prov)
	s.Tracks = make([]partials.Track, len(raw))
	for i, bps := range raw {
		s.Tracks[i] = partials.NewTrack(bps)
	}
	return s
}

// Prepare applies CutHighs (when cutoff > 0) and CleanOutliers to s and
// finalizes it. s is left without tracks.
func Prepare(s *partials.Set, cutoff float32) *partials.Ready {
	if cutoff > 0 {
		s.CutHighs(cutoff)
	}
	s.CleanOutliers()
	return s.Finalize()
}

// Request describes one analysis run.
type Request struct {
	// Source is the path of the analyzed file; only its base name is kept.
	Source string
	Params partials.Params
	// Cutoff drops partials that rise above it. Zero disables the cut.
	Cutoff float32
}

// Analyze runs a over clip and returns the prepared set, stamped with the
// source name, the clip duration and the parameters used.
func Analyze(ctx context.Context, a Analyzer, clip audioio.Clip, req Request) (*partials.Ready, error) {
	raw, err := a.Analyze(ctx, clip.Samples, clip.SampleRate, req.Params)
	if err != nil {
		return nil, fmt.Errorf("session: analyze %s: %w", req.Source, err)
	}
	s := Build(raw, partials.Provenance{
		SourceFile:     filepath.Base(req.Source),
		SourceDuration: clip.Duration(),
		Params:         req.Params,
	})
	return Prepare(s, req.Cutoff), nil
}

// AnalyzeFile reads a WAV file and analyzes it with Analyze.
func AnalyzeFile(ctx context.Context, a Analyzer, path string, p partials.Params, cutoff float32) (*partials.Ready, error) {
	clip, err := audioio.ReadMono(path)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, a, clip, Request{Source: path, Params: p, Cutoff: cutoff})
}

// Load decodes a .utu or .ut2 file. Files without a source duration get
// the end of their time range instead.
func Load(path string) (*partials.Ready, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", path, err)
	}

	prov := r.Provenance()
	if prov.SourceDuration == 0 {
		if tr, ok := r.Stats().TimeRange.Interval(); ok {
			monitoring.Logf("session: %s has no source duration, using time range %v", filepath.Base(path), tr)
			prov.SourceDuration = tr.Hi
			r.SetProvenance(prov)
		}
	}
	return r, nil
}

// Save encodes r by the extension of path and writes it.
func Save(path string, r *partials.Ready) error {
	var (
		data []byte
		err  error
	)
	switch ext(path) {
	case ExtJSON:
		data, err = codec.EncodeJSON(r.View())
	case ExtBinary:
		data, err = codec.EncodeBinary(r.View())
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return fmt.Errorf("session: save %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func decoderFor(path string) (func([]byte) (*partials.Ready, error), error) {
	switch ext(path) {
	case ExtJSON:
		return codec.DecodeJSON, nil
	case ExtBinary:
		return codec.DecodeBinary, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func ext(path string) string { return strings.ToLower(filepath.Ext(path)) }

// Store publishes finalized sets to concurrent readers. Readers hold on
// to the snapshot they got; Publish never mutates it.
type Store struct {
	cur atomic.Pointer[partials.Ready]
}

// Publish makes r the current snapshot and returns the previous one.
func (s *Store) Publish(r *partials.Ready) *partials.Ready {
	return s.cur.Swap(r)
}

// Current returns the latest snapshot, or nil before the first Publish.
func (s *Store) Current() *partials.Ready {
	return s.cur.Load()
}
