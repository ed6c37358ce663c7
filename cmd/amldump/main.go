// Command amldump reads a raw ACPI DSDT/SSDT table dumped from
// /sys/firmware/acpi/tables (or extracted by another tool), parses its AML
// payload with device/acpi/aml, and pretty-prints the resulting AST. It is
// host-side developer tooling; it never runs as part of the kernel binary.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"unsafe"

	"github.com/Amjad50/OS/device/acpi/aml"
	"github.com/Amjad50/OS/device/acpi/table"
	"golang.org/x/term"
)

var (
	interactive = flag.Bool("interactive", false, "page output one screen at a time using a raw terminal")
	skipHeader  = flag.Bool("skip-header", true, "skip the leading ACPI SDTHeader before parsing")
)

var headerSize = int(unsafe.Sizeof(table.SDTHeader{}))

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[amldump] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		exit(fmt.Errorf("usage: amldump [flags] <table-file>"))
	}

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		exit(err)
	}

	payload := raw
	if *skipHeader {
		if len(raw) < headerSize {
			exit(fmt.Errorf("%s is only %d bytes, smaller than an SDTHeader (%d bytes)", flag.Arg(0), len(raw), headerSize))
		}
		payload = raw[headerSize:]
	}

	code, parseErr := aml.Parse(payload)
	if parseErr != nil {
		exit(parseErr)
	}

	out := code.String()
	if *interactive {
		if err := page(out, os.Stdout); err != nil {
			exit(err)
		}
		return
	}

	fmt.Fprintln(os.Stdout, out)
}

// page writes text to w a screenful at a time, putting the terminal attached
// to os.Stdin into raw mode so a single keypress advances to the next page.
// It falls back to a single unpaged write if stdin is not a terminal.
func page(text string, w *os.File) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	_, height, err := term.GetSize(fd)
	if err != nil || height <= 1 {
		height = 24
	}
	pageSize := height - 1

	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, state)

	lines := strings.Split(text, "\n")
	key := make([]byte, 1)
	for i := 0; i < len(lines); i += pageSize {
		end := i + pageSize
		if end > len(lines) {
			end = len(lines)
		}
		fmt.Fprint(w, strings.Join(lines[i:end], "\r\n")+"\r\n")

		if end >= len(lines) {
			break
		}
		fmt.Fprint(w, "-- more --\r")
		if _, err := os.Stdin.Read(key); err != nil {
			return err
		}
		if key[0] == 'q' {
			break
		}
	}
	return nil
}
