// Command mkdevices reads a build-time device probe manifest (devices.toml)
// and generates device/manifest_gen.go, a static Go table compiled into the
// kernel binary. The kernel itself never reads devices.toml: it has no
// filesystem mounted at the point drivers register themselves, so the
// manifest must already be Go source by the time the tree is built.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

var (
	inPath  = flag.String("in", "devices.toml", "path to the device manifest TOML file")
	outPath = flag.String("out", "device/manifest_gen.go", "path to write the generated Go source to")
)

type manifest struct {
	Driver []driverEntry `toml:"driver"`
}

type driverEntry struct {
	Name  string `toml:"name"`
	Order uint8  `toml:"order"`
}

var orderConst = [...]string{
	0: "DetectOrderEarly",
	1: "DetectOrderBeforeACPI",
	2: "DetectOrderACPI",
	3: "DetectOrderLast",
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[mkdevices] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	flag.Parse()

	var m manifest
	if _, err := toml.DecodeFile(*inPath, &m); err != nil {
		exit(fmt.Errorf("decoding %s: %w", *inPath, err))
	}

	sort.Slice(m.Driver, func(i, j int) bool { return m.Driver[i].Name < m.Driver[j].Name })

	src, err := renderManifest(m)
	if err != nil {
		exit(err)
	}

	if err := os.WriteFile(*outPath, src, 0644); err != nil {
		exit(fmt.Errorf("writing %s: %w", *outPath, err))
	}
}

func renderManifest(m manifest) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "// Code generated by cmd/mkdevices from devices.toml; DO NOT EDIT.")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "package device")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "// Manifest maps a driver's DriverInfo.Name to the DetectOrder recorded for")
	fmt.Fprintln(&buf, "// it in devices.toml. RegisterDriver consults this table to let probe")
	fmt.Fprintln(&buf, "// ordering be retuned by editing devices.toml and re-running cmd/mkdevices,")
	fmt.Fprintln(&buf, "// without touching the driver package itself.")
	fmt.Fprintln(&buf, "var Manifest = map[string]DetectOrder{")
	for _, d := range m.Driver {
		if int(d.Order) >= len(orderConst) {
			return nil, fmt.Errorf("driver %q: order %d out of range", d.Name, d.Order)
		}
		fmt.Fprintf(&buf, "\t%q: %s,\n", d.Name, orderConst[d.Order])
	}
	fmt.Fprintln(&buf, "}")

	return format.Source(buf.Bytes())
}
