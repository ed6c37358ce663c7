// Command fatls opens a raw FAT12/16/32 volume image and lists or reads
// files from it through fs/fat, exercising the exact filesystem code the
// kernel uses via a host-side fs.BlockDevice backed by raw pread(2) calls.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Amjad50/OS/fs"
	"github.com/Amjad50/OS/fs/fat"
	"github.com/Amjad50/OS/kernel"
	"golang.org/x/sys/unix"
)

const defaultSectorSize = 512

var readFile = flag.String("read", "", "path of a file within the image to dump to stdout, instead of listing a directory")

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[fatls] error: %s\n", err.Error())
	os.Exit(1)
}

// rawImage implements fs.BlockDevice over a raw disk image file opened with
// a low-level unix.Open, reading sectors with unix.Pread rather than
// buffered os.File I/O.
type rawImage struct {
	fd         int
	sectorSize uint32
}

func openRawImage(path string) (*rawImage, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &rawImage{fd: fd, sectorSize: defaultSectorSize}, nil
}

func (r *rawImage) Close() error { return unix.Close(r.fd) }

func (r *rawImage) SectorSize() uint32 { return r.sectorSize }

func (r *rawImage) ReadSync(lba uint64, buf []byte) *kernel.Error {
	off := int64(lba) * int64(r.sectorSize)
	for read := 0; read < len(buf); {
		n, err := unix.Pread(r.fd, buf[read:], off+int64(read))
		if err != nil {
			return &kernel.Error{Module: "fatls", Message: fmt.Sprintf("pread at offset %d: %s", off+int64(read), err)}
		}
		if n == 0 {
			return &kernel.Error{Module: "fatls", Message: fmt.Sprintf("short read at offset %d", off+int64(read))}
		}
		read += n
	}
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		exit(fmt.Errorf("usage: fatls [-read path] <image-file>"))
	}

	img, err := openRawImage(flag.Arg(0))
	if err != nil {
		exit(err)
	}
	defer img.Close()

	fsys, ferr := fat.LoadFatFilesystem(img, 0, volumeSizeInSectors(flag.Arg(0), img.SectorSize()))
	if ferr != nil {
		exit(ferr)
	}

	fmt.Fprintf(os.Stdout, "volume label: %q, type: %s\n", fsys.VolumeLabel(), fsys.Type())

	if *readFile != "" {
		dumpFile(fsys, *readFile)
		return
	}
	listDir(fsys, "/")
}

func volumeSizeInSectors(path string, sectorSize uint32) uint32 {
	info, err := os.Stat(path)
	if err != nil {
		exit(err)
	}
	return uint32((info.Size() + int64(sectorSize) - 1) / int64(sectorSize))
}

func listDir(fsys *fat.FatFilesystem, path string) {
	entries, err := fsys.OpenDir(path)
	if err != nil {
		exit(err)
	}
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir "
		}
		fmt.Fprintf(os.Stdout, "%s %10d  %s\n", kind, e.Size, e.Name)
	}
}

func dumpFile(fsys *fat.FatFilesystem, path string) {
	entries, err := fsys.OpenDir(parentOf(path))
	if err != nil {
		exit(err)
	}

	name := baseOf(path)
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		if e.IsDir() {
			exit(fs.ErrIsDirectory)
		}

		buf := make([]byte, e.Size)
		n, rerr := fsys.ReadFile(e, 0, buf)
		if rerr != nil {
			exit(rerr)
		}
		os.Stdout.Write(buf[:n])
		return
	}
	exit(fs.ErrFileNotFound)
}

// parentOf and baseOf split a fatls command-line path into the directory to
// OpenDir and the name to match within it. Both operate purely on strings;
// the actual path resolution happens inside fs/fat.
func parentOf(path string) string {
	idx := strings.LastIndex(strings.TrimRight(path, "/"), "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

func baseOf(path string) string {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	return trimmed[idx+1:]
}
