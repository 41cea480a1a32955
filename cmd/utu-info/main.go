package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/pitch"
	"github.com/cwbudde/algo-partials/report"
	"github.com/cwbudde/algo-partials/session"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		die("%v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("utu-info", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Print summaries as JSON")
	fundamental := fs.Bool("fundamental", false, "Estimate the fundamental frequency")
	lo := fs.Float64("lo", pitch.DefaultLo, "Lowest fundamental candidate in Hz")
	hi := fs.Float64("hi", pitch.DefaultHi, "Highest fundamental candidate in Hz")
	verbose := fs.Bool("v", false, "Print engine diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: utu-info [flags] file.utu|file.ut2 ...")
	}
	if !*verbose {
		monitoring.SetLogger(nil)
	}

	for _, path := range fs.Args() {
		r, err := session.Load(path)
		if err != nil {
			return err
		}
		s := report.Summarize(r)
		if *jsonOut {
			if err := s.WriteJSON(stdout); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(stdout, "== %s\n", path)
			if err := s.WriteText(stdout); err != nil {
				return err
			}
		}
		if !*fundamental {
			continue
		}
		est, err := pitch.EstimateFundamental(r, float32(*lo), float32(*hi), pitch.DefaultOptions())
		if err != nil {
			fmt.Fprintf(stdout, "Fundamental:      n/a (%v)\n", err)
			continue
		}
		fmt.Fprintf(stdout, "Fundamental:      %.2f Hz (mean deviation %.1f cents over %d partials)\n",
			est.Frequency, est.Cost, est.Partials)
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
