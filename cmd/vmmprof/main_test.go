package main

import (
	"strings"
	"testing"
)

func TestBuildProfile(t *testing.T) {
	samples := []contentionSample{
		{Name: "vmm.kernelSpace", Acquires: 100, Contended: 3},
		{Name: "fat.volume0", Acquires: 40, Contended: 0},
	}

	prof := buildProfile(samples)

	if got, want := len(prof.Sample), len(samples); got != want {
		t.Fatalf("expected %d samples, got %d", want, got)
	}
	for i, s := range samples {
		sample := prof.Sample[i]
		if got, want := sample.Value, []int64{int64(s.Acquires), int64(s.Contended)}; got[0] != want[0] || got[1] != want[1] {
			t.Errorf("sample %d: got values %v, want %v", i, got, want)
		}
		if got, want := sample.Location[0].Line[0].Function.Name, s.Name; got != want {
			t.Errorf("sample %d: got function name %q, want %q", i, got, want)
		}
	}
}

func TestReadSamplesDecodesJSON(t *testing.T) {
	r := strings.NewReader(`[{"Name":"a","Acquires":1,"Contended":0}]`)
	samples, err := decodeSamples(r)
	if err != nil {
		t.Fatalf("decodeSamples: %v", err)
	}
	if len(samples) != 1 || samples[0].Name != "a" {
		t.Fatalf("unexpected decoded samples: %+v", samples)
	}
}
