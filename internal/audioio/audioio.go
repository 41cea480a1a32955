// Package audioio reads and writes mono WAV clips for the analysis and
// resynthesis tools.
package audioio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Clip is a mono sample buffer at a fixed rate.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float32 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float32(float64(len(c.Samples)) / float64(c.SampleRate))
}

// ReadMono decodes a WAV file and mixes all channels down to one.
func ReadMono(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return Clip{}, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return Clip{}, fmt.Errorf("invalid wav sample-rate %d: %s", buf.Format.SampleRate, path)
	}

	numCh := buf.Format.NumChannels
	frames := len(buf.Data) / numCh
	out := make([]float64, frames)
	scale := 1 / float64(numCh)
	for i := range out {
		var sum float64
		for _, v := range buf.Data[i*numCh : (i+1)*numCh] {
			sum += float64(v)
		}
		out[i] = sum * scale
	}
	return Clip{Samples: out, SampleRate: buf.Format.SampleRate}, nil
}

// WriteMono writes c as a 16-bit mono WAV file, creating parent
// directories as needed. Samples are clipped to the 16-bit full scale.
func WriteMono(path string, c Clip) error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample-rate %d", c.SampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const fullScale = 32767.0 / 32768
	data := make([]float32, len(c.Samples))
	for i, v := range c.Samples {
		data[i] = float32(max(-fullScale, min(fullScale, v)))
	}
	enc := wav.NewEncoder(f, c.SampleRate, 16, 1, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  c.SampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return enc.Close()
}

// Resample converts c to the given rate. A clip already at that rate is
// returned unchanged.
func Resample(c Clip, toRate int) (Clip, error) {
	if c.SampleRate == toRate {
		return c, nil
	}
	if c.SampleRate <= 0 || toRate <= 0 {
		return Clip{}, fmt.Errorf("invalid resample %d -> %d", c.SampleRate, toRate)
	}
	r, err := dspresample.NewForRates(
		float64(c.SampleRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return Clip{}, err
	}
	return Clip{Samples: r.Process(c.Samples), SampleRate: toRate}, nil
}
