package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const doc = `{"version": 1, "type": "VutuPartials", "source": "a.wav",
"p0": {"time": [0, 0.5, 1], "amp": [0.2, 0.4, 0.1], "freq": [220, 225, 230], "bw": [0, 0, 0], "phase": [0, 0, 0]}}`

func TestRunWritesDefaultPNG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "set.utu")
	if err := os.WriteFile(in, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout bytes.Buffer
	if err := run([]string{"-in", in, "-mode", "nearest"}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "set.png")); err != nil {
		t.Fatalf("expected set.png: %v", err)
	}
}

func TestRunRejectsBadMode(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"-in", "x.utu", "-mode", "dots"}, &stdout); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if err := run(nil, &stdout); err == nil {
		t.Fatalf("expected error without -in")
	}
}
