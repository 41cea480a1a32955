// Package plotting draws partial trajectories (frequency over time) to an
// image file.
package plotting

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-partials/partials"
)

// Mode selects how trajectories are sampled.
type Mode int

const (
	// ModeBreakpoints plots every stored breakpoint.
	ModeBreakpoints Mode = iota
	// ModeInterpolated samples each partial on a regular time grid with
	// linear interpolation.
	ModeInterpolated
	// ModeNearest samples on the same grid but snaps to the nearest
	// breakpoint.
	ModeNearest
)

func (m Mode) String() string {
	switch m {
	case ModeBreakpoints:
		return "breakpoints"
	case ModeInterpolated:
		return "interp"
	case ModeNearest:
		return "nearest"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeBreakpoints, ModeInterpolated, ModeNearest} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown plot mode %q (use breakpoints, interp or nearest)", s)
}

// Options controls Render.
type Options struct {
	Mode Mode
	// GridStep is the sampling interval in seconds for the grid modes.
	GridStep float32
	// MinAmp hides frames quieter than this linear amplitude.
	MinAmp float32
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns the stock plot options.
func DefaultOptions() Options {
	return Options{
		Mode:     ModeBreakpoints,
		GridStep: 0.01,
		Title:    "Partials",
		Width:    14 * vg.Inch,
		Height:   6 * vg.Inch,
	}
}

// MaxGridPoints bounds the number of grid samples per track.
const MaxGridPoints = 1 << 20

// Trajectories returns one (time, frequency) polyline per track. Frames
// without data, with non-positive frequency, or below MinAmp are left out.
func Trajectories(r *partials.Ready, opt Options) ([]plotter.XYs, error) {
	if opt.Mode != ModeBreakpoints && opt.GridStep <= 0 {
		return nil, fmt.Errorf("grid step must be > 0")
	}
	stats := r.Stats()
	out := make([]plotter.XYs, r.Len())
	for p := range out {
		keep := func(t float32, f partials.Frame) {
			if f.Freq > 0 && f.Amp >= opt.MinAmp {
				out[p] = append(out[p], plotter.XY{X: float64(t), Y: float64(f.Freq)})
			}
		}
		switch opt.Mode {
		case ModeBreakpoints:
			track, _ := r.Track(p)
			for i, t := range track.Time {
				if f, ok := r.FrameByIndex(p, i); ok {
					keep(t, f)
				}
			}
		case ModeInterpolated, ModeNearest:
			span := stats.PartialTimeRanges[p]
			w := math.Floor(float64(span.Width() / opt.GridStep))
			if !(w < MaxGridPoints) {
				return nil, fmt.Errorf("grid step %g s gives more than %d points for p%d", opt.GridStep, MaxGridPoints, p)
			}
			steps := int(w)
			for i := 0; i <= steps; i++ {
				t := span.Lo + float32(i)*opt.GridStep
				var (
					f  partials.Frame
					ok bool
				)
				if opt.Mode == ModeInterpolated {
					f, ok = r.FrameAt(p, t)
				} else {
					f, ok = r.FrameNearest(p, t)
				}
				if ok {
					keep(t, f)
				}
			}
		default:
			return nil, fmt.Errorf("unknown plot mode %v", opt.Mode)
		}
	}
	return out, nil
}

// Render draws r on a log-frequency axis and saves it to path. The image
// format follows the file extension. A dashed line marks the time of peak
// polyphony.
func Render(r *partials.Ready, path string, opt Options) error {
	lines, err := Trajectories(r, opt)
	if err != nil {
		return err
	}
	stats := r.Stats()

	p := plot.New()
	p.Title.Text = opt.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Frequency (Hz)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	colors := generateColors(len(lines))
	for i, pts := range lines {
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
	}

	fLo, fHi := 20.0, 20000.0
	if lo := stats.FreqRange.Lo(); lo > 0 {
		fLo, fHi = float64(lo), math.Max(float64(stats.FreqRange.Hi()), float64(lo)*2)
	}
	p.Y.Min, p.Y.Max = fLo, fHi

	if stats.MaxActivePartials > 0 {
		t := float64(stats.MaxActiveTime)
		marker, err := plotter.NewLine(plotter.XYs{{X: t, Y: fLo}, {X: t, Y: fHi}})
		if err != nil {
			return err
		}
		marker.Color = color.Gray{Y: 96}
		marker.Width = vg.Points(1)
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("peak polyphony %d", stats.MaxActivePartials), marker)
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
	}

	if err := p.Save(opt.Width, opt.Height, path); err != nil {
		return fmt.Errorf("save partials plot: %w", err)
	}
	return nil
}

// generateColors creates a palette of distinct colors for partial lines
func generateColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		hue := math.Mod(float64(i)*0.618033988749895, 1)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
