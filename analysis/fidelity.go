// Package analysis measures how closely a resynthesized partial set
// reproduces its source audio.
package analysis

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-partials/internal/audioio"
	"github.com/cwbudde/algo-partials/partials"
	"github.com/cwbudde/algo-partials/synth"
)

const (
	envFrame  = 256
	envHop    = 128
	fftSize   = 2048
	fftHop    = 1024
	minFrames = 512
)

// Fidelity holds source-vs-resynthesis distances. Score is 0 for a
// perfect match and 1 for the worst; Similarity maps it to (0, 1].
type Fidelity struct {
	SampleRate    int `json:"sample_rate"`
	LagSamples    int `json:"lag_samples"`
	AlignedFrames int `json:"aligned_frames"`

	TimeRMSE       float64 `json:"time_rmse"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// worst is the result for inputs too short to compare.
func worst(sr int) Fidelity {
	return Fidelity{SampleRate: sr, Score: 1}
}

// Compare measures resynth against source. resynth is resampled to the
// source rate first. Both signals are RMS-normalized and lag-aligned.
func Compare(source, resynth audioio.Clip) (Fidelity, error) {
	if source.SampleRate <= 0 {
		return Fidelity{}, fmt.Errorf("invalid source sample-rate %d", source.SampleRate)
	}
	resynth, err := audioio.Resample(resynth, source.SampleRate)
	if err != nil {
		return Fidelity{}, fmt.Errorf("resample resynthesis: %w", err)
	}
	sr := source.SampleRate

	ref := normalized(source.Samples)
	cand := normalized(resynth.Samples)
	if ref == nil || cand == nil {
		return worst(sr), nil
	}

	f := Fidelity{SampleRate: sr}
	f.LagSamples, err = crossCorrelationLag(ref, cand, sr/20)
	if err != nil {
		return Fidelity{}, err
	}
	if f.LagSamples >= 0 {
		ref = ref[min(f.LagSamples, len(ref)):]
	} else {
		cand = cand[min(-f.LagSamples, len(cand)):]
	}
	n := min(len(ref), len(cand))
	if n < minFrames {
		return worst(sr), nil
	}
	ref, cand = ref[:n], cand[:n]
	f.AlignedFrames = n

	var sum float64
	for i := range ref {
		d := ref[i] - cand[i]
		sum += d * d
	}
	f.TimeRMSE = math.Sqrt(sum / float64(n))
	f.EnvelopeRMSEDB = envelopeRMSEDB(ref, cand)
	if f.SpectralRMSEDB, err = spectralRMSEDB(ref, cand); err != nil {
		return Fidelity{}, err
	}

	f.Score = clamp01(0.35*clamp01(f.TimeRMSE/0.25) +
		0.25*clamp01(f.EnvelopeRMSEDB/30) +
		0.40*clamp01(f.SpectralRMSEDB/30))
	f.Similarity = math.Exp(-4 * f.Score)
	return f, nil
}

// CompareSet renders r with opt and compares the result to source.
func CompareSet(ctx context.Context, source audioio.Clip, r *partials.Ready, opt synth.Options) (Fidelity, error) {
	clip, err := synth.Render(ctx, r, opt)
	if err != nil {
		return Fidelity{}, err
	}
	return Compare(source, clip)
}

// normalized returns x without leading silence, scaled to an RMS of 0.1.
// It returns nil if nothing is left.
func normalized(x []float64) []float64 {
	start := len(x)
	for i, v := range x {
		if math.Abs(v) > 1e-6 {
			start = i
			break
		}
	}
	x = x[start:]
	if len(x) == 0 {
		return nil
	}
	r := rms(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * 0.1 / r
	}
	return out
}

// crossCorrelationLag finds the lag in [-maxLag, maxLag] that maximizes
// sum ref[i+lag]*cand[i], using FFT convolution with the reversed
// candidate.
func crossCorrelationLag(ref, cand []float64, maxLag int) (int, error) {
	a := make([]float32, min(len(ref), 1<<17))
	for i := range a {
		a[i] = float32(ref[i])
	}
	rev := make([]float32, min(len(cand), 1<<17))
	for i := range rev {
		rev[len(rev)-1-i] = float32(cand[i])
	}
	corr := make([]float32, len(a)+len(rev)-1)
	if err := algofft.ConvolveReal(corr, a, rev); err != nil {
		return 0, fmt.Errorf("cross-correlation: %w", err)
	}

	zero := len(rev) - 1
	best, bestLag := float32(math.Inf(-1)), 0
	for lag := -maxLag; lag <= maxLag; lag++ {
		k := zero + lag
		if k < 0 || k >= len(corr) {
			continue
		}
		if corr[k] > best {
			best, bestLag = corr[k], lag
		}
	}
	return bestLag, nil
}

func envelopeRMSEDB(a, b []float64) float64 {
	frames := (len(a)-envFrame)/envHop + 1
	if frames < 1 {
		return 0
	}
	envA := make([]float64, frames)
	envB := make([]float64, frames)
	var peak float64
	for i := range envA {
		s := i * envHop
		envA[i] = rms(a[s : s+envFrame])
		envB[i] = rms(b[s : s+envFrame])
		peak = math.Max(peak, math.Max(envA[i], envB[i]))
	}
	floor := peak * 1e-4

	var sum float64
	for i := range envA {
		d := linToDB(math.Max(envA[i], floor)) - linToDB(math.Max(envB[i], floor))
		sum += d * d
	}
	return math.Sqrt(sum / float64(frames))
}

// spectralRMSEDB compares the STFT magnitudes of a and b summed over
// time, in dB per bin.
func spectralRMSEDB(a, b []float64) (float64, error) {
	size := fftSize
	for size > len(a) {
		size /= 2
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return 0, fmt.Errorf("fft plan: %w", err)
	}

	hann := make([]float64, size)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}
	bins := size / 2
	sumA := make([]float64, bins)
	sumB := make([]float64, bins)
	specA := make([]complex128, bins+1)
	specB := make([]complex128, bins+1)
	bufA := make([]float64, size)
	bufB := make([]float64, size)

	hop := min(fftHop, size/2)
	for pos := 0; pos+size <= len(a); pos += hop {
		for i := range hann {
			bufA[i] = a[pos+i] * hann[i]
			bufB[i] = b[pos+i] * hann[i]
		}
		plan.Forward(specA, bufA)
		plan.Forward(specB, bufB)
		for k := 1; k < bins; k++ {
			sumA[k] += cmplx.Abs(specA[k])
			sumB[k] += cmplx.Abs(specB[k])
		}
	}

	// Bins more than 80 dB below the strongest one count as equal.
	var peak float64
	for k := 1; k < bins; k++ {
		peak = math.Max(peak, math.Max(sumA[k], sumB[k]))
	}
	floor := peak * 1e-4

	var sum float64
	for k := 1; k < bins; k++ {
		d := linToDB(math.Max(sumA[k], floor)) - linToDB(math.Max(sumB[k], floor))
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1)), nil
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func linToDB(x float64) float64 {
	return 20 * math.Log10(math.Max(x, 1e-12))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
