package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirectsAndMutes(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("partials: %d", 3)
	if len(got) != 1 || got[0] != "partials: 3" {
		t.Fatalf("redirected logger captured %q", got)
	}

	SetLogger(nil)
	Logf("dropped")
	if len(got) != 1 {
		t.Fatalf("muted logger still captured: %q", got)
	}
}
