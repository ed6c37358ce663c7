// Package devicefs implements the /devices virtual filesystem: every
// registered device (device.RegisterDevice) appears as a flat file whose
// contents are whatever that device's Read method produces.
package devicefs

import (
	"github.com/Amjad50/OS/device"
	"github.com/Amjad50/OS/fs"
	"github.com/Amjad50/OS/kernel"
)

// ClusterMagic is the distinctive start-cluster value used to mark inodes
// as belonging to the devices filesystem rather than a real on-disk
// filesystem, matching the sentinel documented for the /devices mount.
const ClusterMagic = 0xdef1ce5

// FS implements fs.FileSystem over the device registry. It holds no state
// of its own; every operation reads straight through to the registry, which
// already serializes concurrent access.
type FS struct{}

// New returns a devices filesystem ready to be mounted at /devices.
func New() *FS {
	return &FS{}
}

// OpenDir implements fs.FileSystem. Only the root path is valid: the
// devices filesystem has no subdirectories.
func (f *FS) OpenDir(path string) ([]fs.INode, *kernel.Error) {
	if path != "/" {
		return nil, fs.ErrFileNotFound
	}

	names := device.DeviceNames()
	entries := make([]fs.INode, 0, len(names))
	for _, name := range names {
		entries = append(entries, fs.INode{
			Name:         name,
			Attributes:   fs.Attributes{},
			StartCluster: ClusterMagic,
		})
	}
	return entries, nil
}

// ReadDir implements fs.FileSystem. Since every device inode carries
// ClusterMagic as its start cluster, listing one is equivalent to
// re-listing the root.
func (f *FS) ReadDir(inode fs.INode) ([]fs.INode, *kernel.Error) {
	if inode.StartCluster != ClusterMagic {
		return nil, fs.ErrIsNotDirectory
	}
	return f.OpenDir("/")
}

// ReadFile implements fs.FileSystem, delegating to the named device's own
// Read.
func (f *FS) ReadFile(inode fs.INode, position uint32, buf []byte) (uint64, *kernel.Error) {
	if inode.StartCluster != ClusterMagic {
		return 0, fs.ErrIsDirectory
	}

	dev, ok := device.LookupDevice(inode.Name)
	if !ok {
		return 0, fs.ErrDeviceNotFound
	}
	return dev.Read(position, buf)
}
