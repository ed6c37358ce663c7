// Command vmmprof converts a JSON dump of kernel/sync contention counters
// (as produced by sync.Snapshot, one ContentionSample per named lock) into a
// pprof profile.proto file that `go tool pprof` can visualize. It never
// links against kernel/sync itself: that package's spinlock body is an
// arch-specific assembly stub resolved by the kernel's own build, not by a
// hosted Go toolchain, so this tool only depends on the wire-shape of
// ContentionSample, decoded independently.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/pprof/profile"
)

var (
	inPath  = flag.String("in", "-", "path to a JSON array of contention samples, or - for stdin")
	outPath = flag.String("out", "vmm.pb.gz", "path to write the pprof profile to")
)

// contentionSample mirrors kernel/sync.ContentionSample's JSON shape without
// importing the freestanding package.
type contentionSample struct {
	Name      string
	Acquires  uint64
	Contended uint64
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[vmmprof] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	flag.Parse()

	samples, err := readSamples(*inPath)
	if err != nil {
		exit(err)
	}

	prof := buildProfile(samples)

	out, err := os.Create(*outPath)
	if err != nil {
		exit(err)
	}
	defer out.Close()

	if err := prof.Write(out); err != nil {
		exit(fmt.Errorf("writing profile: %w", err))
	}
}

func readSamples(path string) ([]contentionSample, error) {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	return decodeSamples(in)
}

func decodeSamples(r io.Reader) ([]contentionSample, error) {
	var samples []contentionSample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, fmt.Errorf("decoding contention samples: %w", err)
	}
	return samples, nil
}

// buildProfile turns one contention sample per named lock into a pprof
// profile with two value types: acquires and contended acquires. Each lock
// becomes a single-frame stack so `go tool pprof -top` lists locks by name.
func buildProfile(samples []contentionSample) *profile.Profile {
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "acquires", Unit: "count"},
			{Type: "contended", Unit: "count"},
		},
	}

	for i, s := range samples {
		id := uint64(i + 1)
		fn := &profile.Function{ID: id, Name: s.Name, SystemName: s.Name}
		loc := &profile.Location{ID: id, Line: []profile.Line{{Function: fn, Line: 0}}}
		prof.Function = append(prof.Function, fn)
		prof.Location = append(prof.Location, loc)
		prof.Sample = append(prof.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{int64(s.Acquires), int64(s.Contended)},
		})
	}

	return prof
}
