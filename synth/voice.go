package synth

import (
	"math"

	"github.com/cwbudde/algo-partials/dsp"
	"github.com/cwbudde/algo-partials/partials"
)

const twoPi = 2 * math.Pi

// voice is the oscillator state of one partial.
type voice struct {
	t     partials.Track
	seg   int
	phase float64
	noise *dsp.Noise
	// first and last sample index covered by the partial.
	start, end int
}

func newVoice(t partials.Track, sr float64, noise *dsp.Noise) *voice {
	first, last := t.Breakpoint(0), t.Breakpoint(t.Len()-1)
	start := int(math.Ceil(float64(first.Time) * sr))
	v := &voice{
		t:     t,
		noise: noise,
		start: start,
		end:   int(math.Floor(float64(last.Time) * sr)),
	}
	offset := float64(start)/sr - float64(first.Time)
	v.phase = math.Mod(float64(first.Phase)+twoPi*float64(first.Freq)*offset, twoPi)
	return v
}

// render adds the voice into out, whose first sample has index pos.
func (v *voice) render(out []float64, pos int, sr float64) {
	last := v.t.Len() - 1
	for i := range out {
		n := pos + i
		if n < v.start {
			continue
		}
		if n > v.end {
			return
		}
		ts := float32(float64(n) / sr)
		for v.seg+1 < last && v.t.Time[v.seg+1] <= ts {
			v.seg++
		}

		t0, t1 := v.t.Time[v.seg], v.t.Time[v.seg+1]
		var frac float64
		if t1 > t0 {
			frac = math.Max(0, math.Min(1, float64((ts-t0)/(t1-t0))))
		}
		amp := interp(v.t.Amp, v.seg, frac)
		freq := interp(v.t.Freq, v.seg, frac)
		bw := math.Max(0, math.Min(1, interp(v.t.Bandwidth, v.seg, frac)))

		mod := math.Sqrt(1 - bw)
		if bw > 0 {
			mod += math.Sqrt(2*bw) * v.noise.Next()
		}
		out[i] += amp * mod * math.Cos(v.phase)

		v.phase += twoPi * freq / sr
		if v.phase >= twoPi {
			v.phase -= twoPi
		}
	}
}

func interp(x []float32, seg int, frac float64) float64 {
	a, b := float64(x[seg]), float64(x[seg+1])
	return a + (b-a)*frac
}
