package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/plotting"
	"github.com/cwbudde/algo-partials/session"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		die("%v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	def := plotting.DefaultOptions()
	fs := flag.NewFlagSet("utu-plot", flag.ContinueOnError)
	in := fs.String("in", "", "Input partials file (.utu or .ut2)")
	out := fs.String("out", "", "Output image (.png, .svg, .pdf); default: input name with .png")
	mode := fs.String("mode", def.Mode.String(), "Sampling mode: breakpoints, interp or nearest")
	step := fs.Float64("step", float64(def.GridStep), "Grid step in seconds for interp and nearest")
	minAmp := fs.Float64("min-amp", 0, "Hide frames below this linear amplitude")
	title := fs.String("title", "", "Plot title; default: source file name")
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

	opt := def
	var err error
	if opt.Mode, err = plotting.ParseMode(*mode); err != nil {
		return err
	}
	opt.GridStep = float32(*step)
	opt.MinAmp = float32(*minAmp)

	r, err := session.Load(*in)
	if err != nil {
		return err
	}
	opt.Title = *title
	if opt.Title == "" {
		opt.Title = r.Provenance().SourceFile
	}
	if opt.Title == "" {
		opt.Title = filepath.Base(*in)
	}

	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".png"
	}
	if err := plotting.Render(r, dst, opt); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s (%d partials, %s)\n", dst, r.Len(), opt.Mode)
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
