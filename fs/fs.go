// Package fs defines the interfaces mountable filesystems and their
// collaborators implement: a raw sector-oriented block device, the
// directory-entry representation shared by every filesystem, and the
// FileSystem contract consumed by callers such as the devices virtual
// filesystem (device/devicefs) and the boot-time volume mounter.
package fs

import (
	"bytes"

	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/kfmt"
)

var (
	// ErrFileNotFound indicates that a path component or directory entry
	// could not be located.
	ErrFileNotFound = &kernel.Error{Module: "fs", Message: "file not found"}

	// ErrInvalidPath indicates a path that is empty or not rooted at "/".
	ErrInvalidPath = &kernel.Error{Module: "fs", Message: "invalid path"}

	// ErrIsDirectory indicates that a file-only operation was attempted on
	// a directory inode.
	ErrIsDirectory = &kernel.Error{Module: "fs", Message: "inode refers to a directory"}

	// ErrIsNotDirectory indicates that a directory-only operation was
	// attempted on a file inode.
	ErrIsNotDirectory = &kernel.Error{Module: "fs", Message: "inode does not refer to a directory"}

	// ErrDeviceNotFound indicates that the backing block device for a
	// filesystem mount could not be located.
	ErrDeviceNotFound = &kernel.Error{Module: "fs", Message: "backing device not found"}
)

// BlockDevice is the collaborator interface that sector-oriented filesystems
// (fs/fat) read from. Reads are always a whole number of sectors; the caller
// is responsible for sizing buf accordingly.
type BlockDevice interface {
	// SectorSize returns the size, in bytes, of a single sector.
	SectorSize() uint32

	// ReadSync reads len(buf)/SectorSize() sectors starting at lba into buf.
	ReadSync(lba uint64, buf []byte) *kernel.Error
}

// WrapDiskReadError annotates a BlockDevice read failure with the sector
// that was being read when cause occurred.
func WrapDiskReadError(sector uint64, cause *kernel.Error) *kernel.Error {
	var buf bytes.Buffer
	kfmt.Fprintf(&buf, "disk read error at sector %d: %s", sector, cause.Message)
	return &kernel.Error{Module: "fs", Message: buf.String()}
}

// Attributes mirrors the classic FAT directory-entry attribute byte as a
// flag struct, decoupled from any one filesystem's on-disk encoding.
type Attributes struct {
	ReadOnly    bool
	Hidden      bool
	System      bool
	VolumeLabel bool
	Directory   bool
	Archive     bool
}

// INode describes a single filesystem entry.
type INode struct {
	Name         string
	Attributes   Attributes
	StartCluster uint32
	Size         uint32
}

// IsDir returns true if this inode refers to a directory.
func (n INode) IsDir() bool {
	return n.Attributes.Directory
}

// FileSystem is implemented by every mountable filesystem.
type FileSystem interface {
	// OpenDir resolves an absolute, '/'-separated path to the list of
	// entries it contains.
	OpenDir(path string) ([]INode, *kernel.Error)

	// ReadDir lists the entries contained in the directory inode.
	ReadDir(inode INode) ([]INode, *kernel.Error)

	// ReadFile copies up to len(buf) bytes from inode starting at position
	// into buf, returning the number of bytes copied.
	ReadFile(inode INode, position uint32, buf []byte) (uint64, *kernel.Error)
}
