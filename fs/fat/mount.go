package fat

import (
	"github.com/Amjad50/OS/fs"
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/sync"
)

// Mounted adapts a FatFilesystem to the fs.FileSystem interface, guarding
// every operation with a single mutex held for its full duration.
type Mounted struct {
	m *sync.Mutex[*FatFilesystem]
}

// NewMounted wraps fsys for concurrent use as an fs.FileSystem. name
// identifies the mount in kernel/sync's contention snapshot (e.g. "fat:/").
func NewMounted(name string, fsys *FatFilesystem) *Mounted {
	return &Mounted{m: sync.NewNamedMutex(name, fsys)}
}

// ReadFile implements fs.FileSystem.
func (m *Mounted) ReadFile(inode fs.INode, position uint32, buf []byte) (uint64, *kernel.Error) {
	g := m.m.Lock()
	defer g.Unlock()
	return (*g.Get()).ReadFile(inode, position, buf)
}

// OpenDir implements fs.FileSystem.
func (m *Mounted) OpenDir(path string) ([]fs.INode, *kernel.Error) {
	g := m.m.Lock()
	defer g.Unlock()

	it, err := (*g.Get()).OpenDir(path)
	if err != nil {
		return nil, err
	}
	return collectEntries(it)
}

// ReadDir implements fs.FileSystem.
func (m *Mounted) ReadDir(inode fs.INode) ([]fs.INode, *kernel.Error) {
	g := m.m.Lock()
	defer g.Unlock()

	it, err := (*g.Get()).OpenDirINode(inode)
	if err != nil {
		return nil, err
	}
	return collectEntries(it)
}

func collectEntries(it *DirectoryIterator) ([]fs.INode, *kernel.Error) {
	var entries []fs.INode
	for {
		entry, err := it.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return entries, nil
		}
		entries = append(entries, *entry)
	}
}
