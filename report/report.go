// Package report summarizes a partial set for people: counts, ranges and
// amplitude-weighted statistics.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-partials/partials"
)

// Range is a [lo, hi] pair. It is nil in a Summary when there is no data.
type Range [2]float32

// Summary describes one partial set.
type Summary struct {
	Source         string  `json:"source"`
	Type           string  `json:"type,omitempty"`
	Version        float32 `json:"version"`
	SourceDuration float32 `json:"source_duration"`

	Partials    int `json:"partials"`
	Breakpoints int `json:"breakpoints"`
	MaxFrames   int `json:"max_frames"`

	TimeRange      *Range `json:"time_range,omitempty"`
	AmpRange       *Range `json:"amp_range,omitempty"`
	FreqRange      *Range `json:"freq_range,omitempty"`
	BandwidthRange *Range `json:"bandwidth_range,omitempty"`

	MaxActivePartials int     `json:"max_active_partials"`
	MaxActiveTime     float32 `json:"max_active_time"`

	// Breakpoint statistics weighted by amplitude.
	MeanFreq      float64 `json:"mean_freq"`
	FreqStdDev    float64 `json:"freq_std_dev"`
	MedianFreq    float64 `json:"median_freq"`
	MeanBandwidth float64 `json:"mean_bandwidth"`
	// Unweighted statistics of track durations in seconds.
	MeanDuration   float64 `json:"mean_duration"`
	DurationStdDev float64 `json:"duration_std_dev"`

	Params partials.Params `json:"params"`
}

// Summarize computes a Summary of r.
func Summarize(r *partials.Ready) Summary {
	prov := r.Provenance()
	st := r.Stats()
	s := Summary{
		Source:            prov.SourceFile,
		Type:              prov.Type,
		Version:           prov.Version,
		SourceDuration:    prov.SourceDuration,
		Partials:          st.NumPartials,
		MaxFrames:         st.MaxFrames,
		TimeRange:         rangeOf(st.TimeRange),
		AmpRange:          rangeOf(st.AmpRange),
		FreqRange:         rangeOf(st.FreqRange),
		BandwidthRange:    rangeOf(st.BandwidthRange),
		MaxActivePartials: st.MaxActivePartials,
		MaxActiveTime:     st.MaxActiveTime,
		Params:            prov.Params,
	}

	var freqs, bws, weights, durations []float64
	for i := 0; i < r.Len(); i++ {
		t, _ := r.Track(i)
		s.Breakpoints += t.Len()
		durations = append(durations, float64(st.PartialTimeRanges[i].Width()))
		for j := range min(len(t.Amp), len(t.Freq), len(t.Bandwidth)) {
			if t.Amp[j] <= 0 {
				continue
			}
			freqs = append(freqs, float64(t.Freq[j]))
			bws = append(bws, float64(t.Bandwidth[j]))
			weights = append(weights, float64(t.Amp[j]))
		}
	}

	if len(freqs) > 0 {
		s.MeanFreq, s.FreqStdDev = stat.MeanStdDev(freqs, weights)
		s.MeanBandwidth = stat.Mean(bws, weights)
		sortTogether(freqs, weights)
		s.MedianFreq = stat.Quantile(0.5, stat.Empirical, freqs, weights)
	}
	if len(durations) > 0 {
		s.MeanDuration, s.DurationStdDev = stat.MeanStdDev(durations, nil)
	}
	return s
}

func rangeOf(e partials.Extent) *Range {
	iv, ok := e.Interval()
	if !ok {
		return nil
	}
	return &Range{iv.Lo, iv.Hi}
}

// sortTogether sorts x ascending and permutes w alongside it.
func sortTogether(x, w []float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	xs := make([]float64, len(x))
	ws := make([]float64, len(w))
	for i, j := range idx {
		xs[i], ws[i] = x[j], w[j]
	}
	copy(x, xs)
	copy(w, ws)
}

// WriteJSON writes s as indented JSON.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText writes s as an aligned human-readable listing.
func (s Summary) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Source:           %s\n", s.Source)
	if s.Type != "" {
		ew.printf("Format:           %s v%g\n", s.Type, s.Version)
	}
	ew.printf("Source duration:  %.3f s\n", s.SourceDuration)
	ew.printf("Partials:         %d (%d breakpoints, longest %d)\n", s.Partials, s.Breakpoints, s.MaxFrames)
	ew.printf("Time range:       %s s\n", s.TimeRange)
	ew.printf("Freq range:       %s Hz\n", s.FreqRange)
	ew.printf("Amp range:        %s\n", s.AmpRange)
	ew.printf("Bandwidth range:  %s\n", s.BandwidthRange)
	ew.printf("Peak polyphony:   %d at %.3f s\n", s.MaxActivePartials, s.MaxActiveTime)
	if s.Breakpoints > 0 {
		ew.printf("Freq (weighted):  mean %.1f Hz, std %.1f Hz, median %.1f Hz\n", s.MeanFreq, s.FreqStdDev, s.MedianFreq)
		ew.printf("Bandwidth mean:   %.3f\n", s.MeanBandwidth)
		ew.printf("Duration:         mean %.3f s, std %.3f s\n", s.MeanDuration, s.DurationStdDev)
	}
	p := s.Params
	ew.printf("Params:           resolution %g, window %g, floor %g dB, drift %g, cut [%g, %g], fundamental %g\n",
		p.Resolution, p.WindowWidth, p.AmpFloor, p.FreqDrift, p.LoCut, p.HiCut, p.Fundamental)
	return ew.err
}

func (r *Range) String() string {
	if r == nil {
		return "(none)"
	}
	return fmt.Sprintf("[%g, %g]", r[0], r[1])
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
