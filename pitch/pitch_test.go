package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

// harmonicSet builds one track per listed harmonic of f0, each with a
// small fixed detune in cents and amplitude 1/k.
func harmonicSet(f0 float64, harmonics []int, detuneCents []float64) *partials.Ready {
	s := partials.NewSet(partials.Provenance{})
	for i, k := range harmonics {
		f := float32(f0 * float64(k) * math.Exp2(detuneCents[i]/1200))
		amp := float32(1 / float64(k))
		s.Tracks = append(s.Tracks, partials.NewTrack([]partials.Breakpoint{
			{Time: 0, Amp: amp, Freq: f},
			{Time: 0.5, Amp: amp, Freq: f},
			{Time: 1, Amp: 0, Freq: f},
		}))
	}
	return s.Finalize()
}

func TestEstimateFundamental(t *testing.T) {
	tests := []struct {
		name      string
		f0        float64
		harmonics []int
		detune    []float64
	}{
		{"harmonic 220", 220, []int{1, 2, 3, 4, 5, 6}, []float64{0, 3, -2, 4, -3, 1}},
		{"missing fundamental 150", 150, []int{2, 3, 4, 5}, []float64{2, -1, 0, 3}},
		{"low 55", 55, []int{1, 2, 3, 5, 8}, []float64{0, 0, 0, 0, 0}},
		{"high 1000", 1000, []int{1, 2}, []float64{-2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := harmonicSet(tt.f0, tt.harmonics, tt.detune)
			est, err := EstimateFundamental(r, DefaultLo, DefaultHi, DefaultOptions())
			if err != nil {
				t.Fatalf("EstimateFundamental: %v", err)
			}
			if rel := math.Abs(float64(est.Frequency)-tt.f0) / tt.f0; rel > 0.01 {
				t.Fatalf("estimate %.3f Hz, want %.1f (cost %.2f)", est.Frequency, tt.f0, est.Cost)
			}
			if est.Partials != len(tt.harmonics) {
				t.Fatalf("partials = %d, want %d", est.Partials, len(tt.harmonics))
			}
		})
	}
}

func TestEstimateFundamentalErrors(t *testing.T) {
	empty := partials.NewSet(partials.Provenance{}).Finalize()
	if _, err := EstimateFundamental(empty, DefaultLo, DefaultHi, DefaultOptions()); !errors.Is(err, ErrNoPartials) {
		t.Fatalf("expected ErrNoPartials, got %v", err)
	}

	r := harmonicSet(220, []int{1}, []float64{0})
	if _, err := EstimateFundamental(r, 500, 100, DefaultOptions()); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := EstimateFundamental(r, 0, 100, DefaultOptions()); err == nil {
		t.Fatalf("expected error for zero lower bound")
	}
}

func TestEstimateFundamentalFallsBackToGrid(t *testing.T) {
	opt := DefaultOptions()
	opt.Variant = "nope"
	est, err := EstimateFundamental(harmonicSet(220, []int{1, 2, 3}, []float64{0, 0, 0}), DefaultLo, DefaultHi, opt)
	if err != nil {
		t.Fatalf("EstimateFundamental: %v", err)
	}
	if rel := math.Abs(float64(est.Frequency)-220) / 220; rel > 0.01 {
		t.Fatalf("grid estimate %.3f Hz, want 220", est.Frequency)
	}
}

func TestNewMayflyConfig(t *testing.T) {
	cfg, err := newMayflyConfig("ma", 10, 1, 20)
	if err != nil {
		t.Fatalf("newMayflyConfig: %v", err)
	}
	if cfg.ProblemSize != 1 || cfg.NPop != 10 || cfg.NC != 20 || cfg.MaxIterations != 20 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := newMayflyConfig("ma", 1, 1, 20); err == nil {
		t.Fatalf("expected error for tiny population")
	}
}
