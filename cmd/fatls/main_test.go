package main

import (
	"os"
	"testing"
)

func TestParentOfAndBaseOf(t *testing.T) {
	cases := []struct {
		path, parent, base string
	}{
		{"/README.TXT", "/", "README.TXT"},
		{"/docs/README.TXT", "/docs", "README.TXT"},
		{"/docs/sub/a.txt", "/docs/sub", "a.txt"},
		{"/", "/", ""},
	}
	for _, c := range cases {
		if got := parentOf(c.path); got != c.parent {
			t.Errorf("parentOf(%q) = %q, want %q", c.path, got, c.parent)
		}
		if got := baseOf(c.path); got != c.base {
			t.Errorf("baseOf(%q) = %q, want %q", c.path, got, c.base)
		}
	}
}

func TestRawImageReadSync(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "fatls-*.img")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	want := make([]byte, defaultSectorSize*2)
	for i := range want {
		want[i] = byte(i)
	}
	if _, err := f.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	img, err := openRawImage(f.Name())
	if err != nil {
		t.Fatalf("openRawImage: %v", err)
	}
	defer img.Close()

	got := make([]byte, defaultSectorSize)
	if kerr := img.ReadSync(1, got); kerr != nil {
		t.Fatalf("ReadSync: %v", kerr)
	}
	for i := range got {
		if got[i] != want[defaultSectorSize+i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], want[defaultSectorSize+i])
		}
	}
}
