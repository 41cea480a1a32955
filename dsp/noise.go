package dsp

import (
	"math"
	"math/rand"
)

// Noise produces lowpass-filtered Gaussian noise scaled to roughly unit
// RMS.
type Noise struct {
	rng  *rand.Rand
	lp   *Biquad
	gain float64
}

// NewNoise returns a deterministic noise source band-limited to width Hz.
func NewNoise(width, sampleRate float64, seed int64) *Noise {
	return &Noise{
		rng:  rand.New(rand.NewSource(seed)),
		lp:   NewLowpass(width, sampleRate, math.Sqrt2/2),
		gain: math.Sqrt(sampleRate / (2 * min(width, 0.49*sampleRate))),
	}
}

// Next returns the next noise sample.
func (n *Noise) Next() float64 {
	return n.gain * n.lp.Process(n.rng.NormFloat64())
}
