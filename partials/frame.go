package partials

// Frame is the state of one partial at one instant.
type Frame struct {
	Amp       float32
	Freq      float32
	Bandwidth float32
	Phase     float32
}

// FrameAt returns track p linearly interpolated at time t. Phase is not
// interpolated; it is taken from the breakpoint at or before t. The result
// is false when p is out of range or t lies outside the track's half-open
// time range.
func (r *Ready) FrameAt(p int, t float32) (Frame, bool) {
	tr, i1, i2, ok := r.bracket(p, t)
	if !ok {
		return Frame{}, false
	}
	t1, t2 := tr.Time[i1], tr.Time[i2]
	var frac float32
	if t2 != t1 {
		frac = (t - t1) / (t2 - t1)
	}
	return Frame{
		Amp:       lerp(tr.Amp[i1], tr.Amp[i2], frac),
		Freq:      lerp(tr.Freq[i1], tr.Freq[i2], frac),
		Bandwidth: lerp(tr.Bandwidth[i1], tr.Bandwidth[i2], frac),
		Phase:     tr.Phase[i1],
	}, true
}

// FrameNearest returns the breakpoint of track p closest in time to t,
// without interpolation. Equidistant breakpoints resolve to the later one.
func (r *Ready) FrameNearest(p int, t float32) (Frame, bool) {
	tr, i1, i2, ok := r.bracket(p, t)
	if !ok {
		return Frame{}, false
	}
	i := i2
	if t-tr.Time[i1] < tr.Time[i2]-t {
		i = i1
	}
	return frameOf(tr, i), true
}

// FrameByIndex returns breakpoint i of track p.
func (r *Ready) FrameByIndex(p int, i int) (Frame, bool) {
	if p < 0 || p >= r.stats.NumPartials || p >= len(r.tracks) {
		return Frame{}, false
	}
	tr := r.tracks[p]
	if i < 0 || i >= usableLen(tr) {
		return Frame{}, false
	}
	return frameOf(tr, i), true
}

// bracket finds breakpoints i1, i2 of track p with time[i1] <= t < time[i2]
// by a forward scan. For non-monotonic time data that has no such pair it
// falls back to (0, 1).
func (r *Ready) bracket(p int, t float32) (Track, int, int, bool) {
	if p < 0 || p >= r.stats.NumPartials || p >= len(r.tracks) {
		return Track{}, 0, 0, false
	}
	if !r.stats.PartialTimeRanges[p].Contains(t) {
		return Track{}, 0, 0, false
	}
	tr := r.tracks[p]
	n := usableLen(tr)
	if n < 2 {
		return Track{}, 0, 0, false
	}
	i1, i2 := 0, 1
	for i := 1; i < n; i++ {
		if t < tr.Time[i] {
			i1, i2 = i-1, i
			break
		}
	}
	return tr, i1, i2, true
}

func frameOf(t Track, i int) Frame {
	return Frame{Amp: t.Amp[i], Freq: t.Freq[i], Bandwidth: t.Bandwidth[i], Phase: t.Phase[i]}
}

// usableLen is the number of breakpoints present in all five sequences.
func usableLen(t Track) int {
	return min(len(t.Time), len(t.Amp), len(t.Freq), len(t.Bandwidth), len(t.Phase))
}

func lerp(a float32, b float32, frac float32) float32 {
	return a + frac*(b-a)
}
