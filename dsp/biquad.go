// Package dsp holds the small filters and generators used by resynthesis.
package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewBiquad creates a biquad from coefficients normalized by a0.
func NewBiquad(b0, b1, b2, a1, a2 float64) *Biquad {
	return &Biquad{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

// NewLowpass creates an RBJ lowpass biquad. The cutoff is clamped below
// Nyquist.
func NewLowpass(cutoff, sampleRate, q float64) *Biquad {
	cutoff = min(cutoff, 0.49*sampleRate)
	w0 := 2 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	a0 := 1 + alpha
	return NewBiquad(
		(1-cosw0)/2/a0,
		(1-cosw0)/a0,
		(1-cosw0)/2/a0,
		-2*cosw0/a0,
		(1-alpha)/a0,
	)
}

// Process filters one sample (Direct Form I).
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	y = dspcore.FlushDenormals(y)

	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}
