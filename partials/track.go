package partials

import "fmt"

// Breakpoint is one sample of a partial.
type Breakpoint struct {
	Time      float32
	Amp       float32
	Freq      float32
	Bandwidth float32
	Phase     float32
}

// Track is one partial: five parallel sequences of equal length.
//
// Time is in seconds and expected to be non-decreasing. Amp is linear.
// Freq is in Hz. Bandwidth is the noise energy fraction (0 = pure sine,
// 1 = pure noise). Phase is in radians.
type Track struct {
	Time      []float32
	Amp       []float32
	Freq      []float32
	Bandwidth []float32
	Phase     []float32
}

// NewTrack copies a breakpoint stream into a Track.
func NewTrack(bps []Breakpoint) Track {
	n := len(bps)
	t := Track{
		Time:      make([]float32, n),
		Amp:       make([]float32, n),
		Freq:      make([]float32, n),
		Bandwidth: make([]float32, n),
		Phase:     make([]float32, n),
	}
	for i, bp := range bps {
		t.Time[i] = bp.Time
		t.Amp[i] = bp.Amp
		t.Freq[i] = bp.Freq
		t.Bandwidth[i] = bp.Bandwidth
		t.Phase[i] = bp.Phase
	}
	return t
}

// Len returns the number of breakpoints.
func (t Track) Len() int { return len(t.Time) }

// Degenerate reports whether t has at most one breakpoint.
func (t Track) Degenerate() bool { return t.Len() <= 1 }

// Append adds a breakpoint to the end of t.
func (t *Track) Append(bp Breakpoint) {
	t.Time = append(t.Time, bp.Time)
	t.Amp = append(t.Amp, bp.Amp)
	t.Freq = append(t.Freq, bp.Freq)
	t.Bandwidth = append(t.Bandwidth, bp.Bandwidth)
	t.Phase = append(t.Phase, bp.Phase)
}

// Breakpoint returns breakpoint i. It panics if i is out of range.
func (t Track) Breakpoint(i int) Breakpoint {
	return Breakpoint{
		Time:      t.Time[i],
		Amp:       t.Amp[i],
		Freq:      t.Freq[i],
		Bandwidth: t.Bandwidth[i],
		Phase:     t.Phase[i],
	}
}

// Validate checks that all five sequences have the same length.
func (t Track) Validate() error {
	n := len(t.Time)
	if len(t.Amp) != n || len(t.Freq) != n || len(t.Bandwidth) != n || len(t.Phase) != n {
		return fmt.Errorf("track length mismatch: time=%d amp=%d freq=%d bw=%d phase=%d",
			n, len(t.Amp), len(t.Freq), len(t.Bandwidth), len(t.Phase))
	}
	return nil
}
