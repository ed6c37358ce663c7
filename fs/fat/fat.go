package fat

import (
	"github.com/Amjad50/OS/fs"
	"github.com/Amjad50/OS/kernel"
)

var errUnexpectedFatEntry = &kernel.Error{Module: "fat", Message: "unexpected FAT entry encountered mid-chain"}

// FatFilesystem is a read-only FAT12/16/32 reader mounted over a
// fs.BlockDevice. It caches the boot sector and the full FAT region on
// load; directory and file reads stream sectors on demand.
type FatFilesystem struct {
	startLBA      uint32
	sizeInSectors uint32
	boot          *BootSector
	fatBytes      []byte
	device        fs.BlockDevice
}

// LoadFatFilesystem reads and decodes the boot sector of the volume
// occupying [startLBA, startLBA+sizeInSectors) sectors on device, then
// caches the FAT region.
func LoadFatFilesystem(device fs.BlockDevice, startLBA, sizeInSectors uint32) (*FatFilesystem, *kernel.Error) {
	sectorSize := device.SectorSize()
	sectorCount := (uint32(bootSectorSize) + sectorSize - 1) / sectorSize
	buf := make([]byte, sectorCount*sectorSize)

	if err := device.ReadSync(uint64(startLBA), buf); err != nil {
		return nil, fs.WrapDiskReadError(uint64(startLBA), err)
	}

	boot, err := decodeBootSector(buf, sizeInSectors)
	if err != nil {
		return nil, err
	}

	fsys := &FatFilesystem{
		startLBA:      startLBA,
		sizeInSectors: sizeInSectors,
		boot:          boot,
		device:        device,
	}

	if err := fsys.loadFAT(); err != nil {
		return nil, err
	}

	return fsys, nil
}

// VolumeLabel returns the volume label stored in the extended boot sector.
func (f *FatFilesystem) VolumeLabel() string {
	return f.boot.VolumeLabel()
}

// Type returns the detected FAT variant for this volume.
func (f *FatFilesystem) Type() Type {
	return f.boot.Type()
}

func (f *FatFilesystem) firstSectorOfCluster(cluster uint32) uint32 {
	return f.boot.DataStartSector() + (cluster-2)*uint32(f.boot.SectorsPerCluster())
}

func (f *FatFilesystem) readSectors(startSector, count uint32) ([]byte, *kernel.Error) {
	sectorSize := uint32(f.boot.BytesPerSector())
	buf := make([]byte, sectorSize*count)

	absSector := uint64(f.startLBA) + uint64(startSector)
	if err := f.device.ReadSync(absSector, buf); err != nil {
		return nil, fs.WrapDiskReadError(absSector, err)
	}

	return buf, nil
}

func (f *FatFilesystem) loadFAT() *kernel.Error {
	fatsSizeInSectors := f.boot.FatSizeInSectors() * uint32(f.boot.NumberOfFATs())
	fatStartSector := f.boot.FatStartSector()

	fatBytes, err := f.readSectors(fatStartSector, fatsSizeInSectors)
	if err != nil {
		return err
	}

	f.fatBytes = fatBytes
	return nil
}

func (f *FatFilesystem) readFatEntryAt(n uint32) fatEntry {
	return readFatEntry(f.boot.Type(), f.fatBytes, n)
}

func (f *FatFilesystem) openRootDir() directory {
	if f.boot.Type() == Fat32 {
		return directory{startCluster: f.boot.RootCluster()}
	}

	return directory{
		isRoot:            true,
		rootStartSector:   f.boot.RootDirStartSector(),
		rootSizeInSectors: f.boot.RootDirSectors(),
	}
}

// OpenDir resolves path (an absolute, '/'-separated path with empty
// components skipped) to the directory iterator for the final component.
func (f *FatFilesystem) OpenDir(path string) (*DirectoryIterator, *kernel.Error) {
	if path == "" || path[0] != '/' {
		return nil, fs.ErrInvalidPath
	}

	dir := f.openRootDir()
	if path == "/" {
		return newDirectoryIterator(f, dir)
	}

	for _, component := range splitPath(path[1:]) {
		if component == "" {
			continue
		}

		it, err := newDirectoryIterator(f, dir)
		if err != nil {
			return nil, err
		}

		found := false
		for {
			entry, err := it.Next()
			if err != nil {
				return nil, err
			}
			if entry == nil {
				break
			}
			if entry.Name == component {
				if !entry.IsDir() {
					return nil, fs.ErrIsNotDirectory
				}
				dir = directory{startCluster: entry.StartCluster}
				found = true
				break
			}
		}
		if !found {
			return nil, fs.ErrFileNotFound
		}
	}

	return newDirectoryIterator(f, dir)
}

// OpenDirINode returns a directory iterator over the contents of a
// directory inode previously returned by OpenDir/ReadDir.
func (f *FatFilesystem) OpenDirINode(inode fs.INode) (*DirectoryIterator, *kernel.Error) {
	if !inode.IsDir() {
		return nil, fs.ErrIsNotDirectory
	}
	return newDirectoryIterator(f, directory{startCluster: inode.StartCluster})
}

// ReadFile copies up to len(buf) bytes from inode starting at position into
// buf, returning the number of bytes copied. It returns 0 at or past EOF.
func (f *FatFilesystem) ReadFile(inode fs.INode, position uint32, buf []byte) (uint64, *kernel.Error) {
	if inode.IsDir() {
		return 0, fs.ErrIsDirectory
	}
	if position >= inode.Size {
		return 0, nil
	}

	remainingFile := inode.Size - position
	maxToRead := uint32(len(buf))
	if remainingFile < maxToRead {
		maxToRead = remainingFile
	}

	bytesPerCluster := f.boot.BytesPerCluster()
	bytesPerSector := uint32(f.boot.BytesPerSector())

	cluster := inode.StartCluster
	clusterIndex := position / bytesPerCluster
	for i := uint32(0); i < clusterIndex; i++ {
		entry := f.readFatEntryAt(cluster)
		if entry.state != entryNext {
			return 0, errUnexpectedFatEntry
		}
		cluster = entry.next
	}

	var read uint32
	positionInCluster := position % bytesPerCluster
	for read < maxToRead {
		clusterStartSector := f.firstSectorOfCluster(cluster)
		clusterOffset := positionInCluster / bytesPerSector
		sectorNumber := clusterStartSector + clusterOffset
		sectorOffset := positionInCluster % bytesPerSector

		sector, err := f.readSectors(sectorNumber, 1)
		if err != nil {
			return uint64(read), err
		}
		sector = sector[sectorOffset:]

		toRead := maxToRead - read
		if uint32(len(sector)) < toRead {
			toRead = uint32(len(sector))
		}
		copy(buf[read:read+toRead], sector[:toRead])

		read += toRead
		positionInCluster += toRead

		if positionInCluster >= bytesPerCluster {
			positionInCluster = 0
			entry := f.readFatEntryAt(cluster)
			switch entry.state {
			case entryNext:
				cluster = entry.next
			case entryEndOfChain:
				return uint64(read), nil
			default:
				return uint64(read), errUnexpectedFatEntry
			}
		}
	}

	return uint64(read), nil
}

func splitPath(p string) []string {
	var (
		components []string
		start      int
	)
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			components = append(components, p[start:i])
			start = i + 1
		}
	}
	return components
}
