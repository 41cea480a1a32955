// Package synth renders a partial set back to audio with
// bandwidth-enhanced oscillators: each partial is a sinusoid whose
// amplitude is split between a pure part and a part modulated by
// band-limited noise.
package synth

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-partials/dsp"
	"github.com/cwbudde/algo-partials/internal/audioio"
	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
)

// MaxDuration is the longest clip Render produces, in seconds.
const MaxDuration = 3600

// ErrTooLong is returned when a set would render longer than MaxDuration.
var ErrTooLong = errors.New("synth: render duration too long")

// Options controls rendering.
type Options struct {
	SampleRate int
	// OutputRate is the rate of the returned clip. Zero means SampleRate.
	OutputRate int
	NoiseWidth float64 // Hz
	GainDB     float64
	Seed       int64
	BlockSize  int
}

// DefaultOptions returns the stock render options.
func DefaultOptions() Options {
	return Options{
		SampleRate: 48000,
		NoiseWidth: 50,
		GainDB:     0,
		Seed:       1,
		BlockSize:  4096,
	}
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", o.SampleRate)
	}
	if o.OutputRate < 0 {
		return fmt.Errorf("output rate must be >= 0")
	}
	if o.NoiseWidth <= 0 {
		return fmt.Errorf("noise width must be > 0")
	}
	if o.GainDB > 24 {
		return fmt.Errorf("gain too high: %g dB", o.GainDB)
	}
	if o.BlockSize < 1 {
		return fmt.Errorf("block size must be >= 1")
	}
	return nil
}

// Render synthesizes r. The clip covers the source duration, or the end
// of the last partial if that is later. ctx is checked between blocks.
func Render(ctx context.Context, r *partials.Ready, opt Options) (audioio.Clip, error) {
	if err := opt.Validate(); err != nil {
		return audioio.Clip{}, err
	}
	sr := float64(opt.SampleRate)

	duration := max(r.Provenance().SourceDuration, r.Stats().TimeRange.Hi(), 0)
	if !(duration <= MaxDuration) {
		return audioio.Clip{}, fmt.Errorf("%w: %g s", ErrTooLong, duration)
	}
	n := int(math.Ceil(float64(duration) * sr))
	out := make([]float64, n)

	voices := make([]*voice, 0, r.Len())
	for i := 0; i < r.Len(); i++ {
		t, _ := r.Track(i)
		if err := t.Validate(); err != nil {
			monitoring.Logf("synth: skipping p%d: %v", i, err)
			continue
		}
		if t.Degenerate() {
			continue
		}
		voices = append(voices, newVoice(t, sr, dsp.NewNoise(opt.NoiseWidth, sr, opt.Seed+int64(i))))
	}

	for pos := 0; pos < n; pos += opt.BlockSize {
		if err := ctx.Err(); err != nil {
			return audioio.Clip{}, err
		}
		block := out[pos:min(pos+opt.BlockSize, n)]
		for _, v := range voices {
			v.render(block, pos, sr)
		}
	}

	gain := float64(dbToGain(float32(opt.GainDB)))
	for i := range out {
		out[i] *= gain
	}

	clip := audioio.Clip{Samples: out, SampleRate: opt.SampleRate}
	if opt.OutputRate != 0 {
		return audioio.Resample(clip, opt.OutputRate)
	}
	return clip, nil
}

func dbToGain(db float32) float32 {
	const ln10over20 = 0.11512925464970229
	return approx.FastExp(db * ln10over20)
}
