package main

import (
	"os"
	"strings"
	"testing"
)

func TestPageFallsBackWhenStdinNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer outR.Close()

	if err := page("Scope (\\_SB) {}", outW); err != nil {
		t.Fatalf("page: %v", err)
	}
	outW.Close()

	buf := make([]byte, 256)
	n, _ := outR.Read(buf)
	if got := string(buf[:n]); !strings.Contains(got, "Scope") {
		t.Errorf("expected piped output to contain the dumped text, got %q", got)
	}
}
