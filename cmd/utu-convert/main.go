package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/session"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		die("%v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("utu-convert", flag.ContinueOnError)
	in := fs.String("in", "", "Input partials file (.utu or .ut2)")
	out := fs.String("out", "", "Output partials file (.utu or .ut2)")
	cut := fs.Float64("cut", 0, "Drop partials rising above this frequency in Hz (0 = keep all)")
	clean := fs.Bool("clean", true, "Drop partials with fewer than two breakpoints (always on with -cut)")
	verbose := fs.Bool("v", false, "Print engine diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("both -in and -out are required")
	}
	if !*verbose {
		monitoring.SetLogger(nil)
	}

	r, err := session.Load(*in)
	if err != nil {
		return err
	}
	before := r.Len()
	if *cut > 0 || *clean {
		s := r.Edit()
		if *cut > 0 {
			s.CutHighs(float32(*cut))
		}
		s.CleanOutliers()
		r = s.Finalize()
	}
	if err := session.Save(*out, r); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s: %d partials (%d in %s)\n", *out, r.Len(), before, *in)
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
