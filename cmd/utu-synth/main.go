package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-partials/analysis"
	"github.com/cwbudde/algo-partials/internal/audioio"
	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/session"
	"github.com/cwbudde/algo-partials/settings"
	"github.com/cwbudde/algo-partials/synth"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		die("%v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("utu-synth", flag.ContinueOnError)
	in := fs.String("in", "", "Input partials file (.utu or .ut2)")
	out := fs.String("out", "", "Output WAV path; default: input name with .wav")
	settingsPath := fs.String("settings", "", "Optional settings JSON (noise_width, output_gain_db, sample_rate, source_wav)")
	rate := fs.Int("rate", 0, "Output sample rate in Hz (0 = render rate)")
	seed := fs.Int64("seed", 1, "Noise seed")
	compare := fs.String("compare", "", "Source WAV to measure resynthesis fidelity against")
	jsonOut := fs.Bool("json", false, "Print fidelity metrics as JSON")
	verbose := fs.Bool("v", false, "Print engine diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}
	if !*verbose {
		monitoring.SetLogger(nil)
	}

	cfg := settings.Default()
	if *settingsPath != "" {
		var err error
		if cfg, err = settings.LoadJSON(*settingsPath); err != nil {
			return err
		}
	}
	opt := synth.DefaultOptions()
	opt.SampleRate = cfg.SampleRate
	opt.OutputRate = *rate
	opt.NoiseWidth = float64(cfg.NoiseWidth)
	opt.GainDB = float64(cfg.OutputGainDB)
	opt.Seed = *seed

	var store session.Store
	loaded, err := session.Load(*in)
	if err != nil {
		return err
	}
	store.Publish(loaded)

	r := store.Current()
	clip, err := synth.Render(ctx, r, opt)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".wav"
	}
	if err := audioio.WriteMono(dst, clip); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s: %d partials, %.3f s at %d Hz\n", dst, r.Len(), clip.Duration(), clip.SampleRate)

	source := *compare
	if source == "" {
		source = cfg.SourceWAV
	}
	if source == "" {
		return nil
	}
	ref, err := audioio.ReadMono(source)
	if err != nil {
		return err
	}
	fid, err := analysis.Compare(ref, clip)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fid)
	}
	fmt.Fprintf(stdout, "Lag:              %d samples (%.3f ms)\n", fid.LagSamples, 1000*float64(fid.LagSamples)/float64(fid.SampleRate))
	fmt.Fprintf(stdout, "Time RMSE:        %.4f\n", fid.TimeRMSE)
	fmt.Fprintf(stdout, "Envelope RMSE:    %.2f dB\n", fid.EnvelopeRMSEDB)
	fmt.Fprintf(stdout, "Spectral RMSE:    %.2f dB\n", fid.SpectralRMSEDB)
	fmt.Fprintf(stdout, "Score:            %.4f  (0 best, 1 worst)\n", fid.Score)
	fmt.Fprintf(stdout, "Similarity:       %.2f%%\n", fid.Similarity*100)
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
