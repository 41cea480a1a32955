// Package pitch estimates the fundamental frequency of a partial set by
// fitting a harmonic series to its partials.
package pitch

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
)

// ErrNoPartials is returned for sets without usable partials.
var ErrNoPartials = errors.New("pitch: no partials with positive frequency and amplitude")

// Default search range in Hz.
const (
	DefaultLo = 22
	DefaultHi = 2200
)

const (
	gridStepCents = 12.5
	refineCents   = 50.0
	octavePenalty = 2.0 // cents per octave below the top of the range
)

// Options controls the mayfly refinement.
type Options struct {
	Variant    string
	Population int
	Iterations int
	Seed       int64
}

// DefaultOptions returns the stock refinement settings.
func DefaultOptions() Options {
	return Options{Variant: "ma", Population: 12, Iterations: 40, Seed: 1}
}

// Estimate is the result of EstimateFundamental.
type Estimate struct {
	Frequency float32
	// Cost is the weighted mean distance in cents from each partial to
	// its nearest harmonic, plus the octave penalty.
	Cost     float64
	Partials int
}

// observation is one partial reduced to its amplitude-weighted mean
// frequency.
type observation struct {
	freq   float64
	weight float64
}

// EstimateFundamental searches [lo, hi] Hz on a log grid, then refines
// every grid minimum close to the best one with mayfly. Lower candidates
// pay a small penalty so that subharmonics of the true fundamental lose
// ties.
func EstimateFundamental(r *partials.Ready, lo, hi float32, opt Options) (Estimate, error) {
	if lo <= 0 || hi <= lo {
		return Estimate{}, fmt.Errorf("pitch: invalid range [%g, %g]", lo, hi)
	}
	obs := observations(r)
	if len(obs) == 0 {
		return Estimate{}, ErrNoPartials
	}
	flo, fhi := float64(lo), float64(hi)
	cost := func(f0 float64) float64 { return harmonicCost(obs, f0, fhi) }

	steps := int(ratioToCents(fhi/flo)/gridStepCents) + 1
	grid := make([]float64, steps)
	costs := make([]float64, steps)
	gridBest := math.Inf(1)
	for i := range grid {
		grid[i] = math.Min(fhi, flo*centsToRatio(float64(i)*gridStepCents))
		costs[i] = cost(grid[i])
		gridBest = math.Min(gridBest, costs[i])
	}

	best, bestCost := 0.0, math.Inf(1)
	for i, c := range costs {
		if c > gridBest+gridStepCents {
			continue
		}
		if (i > 0 && costs[i-1] < c) || (i+1 < steps && costs[i+1] < c) {
			continue
		}
		f, fc := grid[i], c
		if rf, rc, err := refine(grid[i], cost, flo, fhi, opt); err != nil {
			monitoring.Logf("pitch: refinement near %.2f Hz failed: %v", grid[i], err)
		} else if rc < fc {
			f, fc = rf, rc
		}
		if fc < bestCost {
			best, bestCost = f, fc
		}
	}
	return Estimate{Frequency: float32(best), Cost: bestCost, Partials: len(obs)}, nil
}

func observations(r *partials.Ready) []observation {
	var obs []observation
	for i := 0; i < r.Len(); i++ {
		t, _ := r.Track(i)
		var sum, weight float64
		for j := 0; j < min(len(t.Freq), len(t.Amp)); j++ {
			if t.Freq[j] <= 0 || t.Amp[j] <= 0 {
				continue
			}
			sum += float64(t.Amp[j]) * float64(t.Freq[j])
			weight += float64(t.Amp[j])
		}
		if weight > 0 {
			obs = append(obs, observation{freq: sum / weight, weight: weight})
		}
	}
	return obs
}

func harmonicCost(obs []observation, f0, hi float64) float64 {
	var sum, weight float64
	for _, o := range obs {
		k := math.Max(1, math.Round(o.freq/f0))
		sum += o.weight * math.Abs(ratioToCents(o.freq/(k*f0)))
		weight += o.weight
	}
	return sum/weight + octavePenalty*math.Log2(hi/f0)
}

// refine searches ±refineCents around center.
func refine(center float64, cost func(float64) float64, lo, hi float64, opt Options) (float64, float64, error) {
	cfg, err := newMayflyConfig(opt.Variant, opt.Population, 1, opt.Iterations)
	if err != nil {
		return 0, 0, err
	}
	cfg.Rand = rand.New(rand.NewSource(opt.Seed))

	toFreq := func(pos []float64) float64 {
		f := center * centsToRatio((pos[0]-0.5)*2*refineCents)
		return math.Max(lo, math.Min(hi, f))
	}
	best, bestCost := center, math.Inf(1)
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		f := toFreq(pos)
		c := cost(f)
		if c < bestCost {
			best, bestCost = f, c
		}
		return c
	}
	if _, err := runMayfly(cfg); err != nil {
		return 0, 0, err
	}
	return best, bestCost, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "", "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	if pop < 2 || iters < 1 {
		return nil, fmt.Errorf("population must be >= 2 and iterations >= 1")
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func centsToRatio(c float64) float64 { return math.Exp2(c / 1200) }

func ratioToCents(r float64) float64 { return 1200 * math.Log2(r) }
