package audioio

import (
	"math"
	"path/filepath"
	"testing"
)

func sine(freq float64, rate int, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestWriteThenReadMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tone.wav")
	src := Clip{Samples: sine(440, 22050, 2205), SampleRate: 22050}
	src.Samples[10] = 3 // clipped on write

	if err := WriteMono(path, src); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	got, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if got.SampleRate != 22050 {
		t.Fatalf("sample rate mismatch: %d", got.SampleRate)
	}
	if len(got.Samples) != len(src.Samples) {
		t.Fatalf("length mismatch: got=%d want=%d", len(got.Samples), len(src.Samples))
	}
	if got.Samples[10] < 0.99 || got.Samples[10] > 1 {
		t.Fatalf("expected clipped sample near 1, got %f", got.Samples[10])
	}
	for i, v := range got.Samples {
		if i == 10 {
			continue
		}
		if math.Abs(v-src.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d mismatch: got=%f want=%f", i, v, src.Samples[i])
		}
	}
	if d := got.Duration(); math.Abs(float64(d)-0.1) > 1e-6 {
		t.Fatalf("duration mismatch: %f", d)
	}
}

func TestReadMonoRejectsMissingAndInvalid(t *testing.T) {
	if _, err := ReadMono(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := WriteMono(filepath.Join(t.TempDir(), "x.wav"), Clip{SampleRate: 0}); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestResample(t *testing.T) {
	c := Clip{Samples: sine(100, 48000, 4800), SampleRate: 48000}
	same, err := Resample(c, 48000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if &same.Samples[0] != &c.Samples[0] {
		t.Fatalf("same-rate resample should return the input")
	}

	half, err := Resample(c, 24000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if half.SampleRate != 24000 {
		t.Fatalf("rate mismatch: %d", half.SampleRate)
	}
	if n := len(half.Samples); n < 2300 || n > 2500 {
		t.Fatalf("unexpected resampled length %d", n)
	}
	if _, err := Resample(c, 0); err == nil {
		t.Fatalf("expected error for zero target rate")
	}
}

func TestDurationOfEmptyClip(t *testing.T) {
	if d := (Clip{}).Duration(); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}
