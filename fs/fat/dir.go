package fat

import (
	"encoding/binary"
	"strings"

	"github.com/Amjad50/OS/fs"
	"github.com/Amjad50/OS/kernel"
	"golang.org/x/text/encoding/unicode"
)

const (
	attrReadOnly  = 0x01
	attrHidden    = 0x02
	attrSystem    = 0x04
	attrVolumeID  = 0x08
	attrDirectory = 0x10
	attrArchive   = 0x20
	attrLongName  = attrReadOnly | attrHidden | attrSystem | attrVolumeID
)

func attributesFromFAT(raw byte) fs.Attributes {
	return fs.Attributes{
		ReadOnly:    raw&attrReadOnly == attrReadOnly,
		Hidden:      raw&attrHidden == attrHidden,
		System:      raw&attrSystem == attrSystem,
		VolumeLabel: raw&attrVolumeID == attrVolumeID,
		Directory:   raw&attrDirectory == attrDirectory,
		Archive:     raw&attrArchive == attrArchive,
	}
}

// directory identifies where a single directory's entries live on disk:
// either the FAT12/16 root region (a fixed run of sectors) or a normal
// cluster chain rooted at startCluster (also used for the FAT32 root).
type directory struct {
	isRoot            bool
	rootStartSector   uint32
	rootSizeInSectors uint32
	startCluster      uint32
}

// DirectoryIterator yields the directory entries of a single directory one
// at a time, holding at most one sector buffer in memory.
type DirectoryIterator struct {
	fsys *FatFilesystem
	dir  directory

	sector             []byte
	sectorIndex        uint32
	currentCluster     uint32
	entryIndexInSector uint32
}

func newDirectoryIterator(fsys *FatFilesystem, dir directory) (*DirectoryIterator, *kernel.Error) {
	var (
		sectorIndex    uint32
		currentCluster uint32
	)

	if dir.isRoot {
		sectorIndex = dir.rootStartSector
	} else {
		sectorIndex = fsys.firstSectorOfCluster(dir.startCluster)
		currentCluster = dir.startCluster
	}

	sector, err := fsys.readSectors(sectorIndex, 1)
	if err != nil {
		return nil, err
	}

	return &DirectoryIterator{
		fsys:           fsys,
		dir:            dir,
		sector:         sector,
		sectorIndex:    sectorIndex,
		currentCluster: currentCluster,
	}, nil
}

// nextSector advances to the next sector of the directory, following the
// cluster chain for normal directories when a cluster boundary is crossed.
// It returns false (with no error) once the directory is exhausted.
func (it *DirectoryIterator) nextSector() (bool, *kernel.Error) {
	nextSectorIndex := it.sectorIndex + 1

	if it.dir.isRoot {
		if nextSectorIndex >= it.dir.rootStartSector+it.dir.rootSizeInSectors {
			return false, nil
		}
	} else if nextSectorIndex%uint32(it.fsys.boot.SectorsPerCluster()) == 0 {
		entry := it.fsys.readFatEntryAt(it.currentCluster)
		switch entry.state {
		case entryNext:
			it.currentCluster = entry.next
			nextSectorIndex = it.fsys.firstSectorOfCluster(entry.next)
		case entryEndOfChain:
			return false, nil
		default:
			return false, errUnexpectedFatEntry
		}
	}

	sector, err := it.fsys.readSectors(nextSectorIndex, 1)
	if err != nil {
		return false, err
	}

	it.sector = sector
	it.sectorIndex = nextSectorIndex
	it.entryIndexInSector = 0
	return true, nil
}

func (it *DirectoryIterator) nextRawEntry() ([]byte, *kernel.Error) {
	start := it.entryIndexInSector * directoryEntrySize
	end := start + directoryEntrySize
	if end > uint32(len(it.sector)) {
		ok, err := it.nextSector()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fs.ErrFileNotFound
		}
		return it.nextRawEntry()
	}

	entry := it.sector[start:end]
	it.entryIndexInSector++
	return entry, nil
}

func endOfDirectory(err *kernel.Error) (*fs.INode, *kernel.Error) {
	if err == fs.ErrFileNotFound {
		return nil, nil
	}
	return nil, err
}

// Next returns the next live (non-deleted) directory entry, reassembling
// long file names as needed. It returns (nil, nil) once the directory is
// exhausted.
func (it *DirectoryIterator) Next() (*fs.INode, *kernel.Error) {
	entry, err := it.nextRawEntry()
	if err != nil {
		return endOfDirectory(err)
	}

	for entry[0] == 0x00 || entry[0] == 0xE5 {
		if entry[0] == 0x00 {
			return nil, nil
		}
		entry, err = it.nextRawEntry()
		if err != nil {
			return endOfDirectory(err)
		}
	}

	return it.decodeEntry(entry)
}

func (it *DirectoryIterator) decodeEntry(entry []byte) (*fs.INode, *kernel.Error) {
	attributes := entry[11]

	var name string
	if attributes&attrLongName == attrLongName {
		if entry[0]&0x40 != 0x40 {
			panic("fat: invalid FAT LFN ordinal")
		}
		numEntries := entry[0] & 0x3F

		parts := make([]string, 0, numEntries)
		for i := uint8(0); i < numEntries; i++ {
			parts = append(parts, decodeLFNChunk(entry))

			var err *kernel.Error
			entry, err = it.nextRawEntry()
			if err != nil {
				return nil, err
			}
		}
		attributes = entry[11]

		var b strings.Builder
		for i := len(parts) - 1; i >= 0; i-- {
			b.WriteString(parts[i])
		}
		name = b.String()
	} else {
		name = shortNameFromEntry(entry)
	}

	clusterHi := uint32(binary.LittleEndian.Uint16(entry[20:22]))
	clusterLo := uint32(binary.LittleEndian.Uint16(entry[26:28]))
	size := binary.LittleEndian.Uint32(entry[28:32])
	startCluster := (clusterHi << 16) | clusterLo

	return &fs.INode{
		Name:         name,
		Attributes:   attributesFromFAT(attributes),
		StartCluster: startCluster,
		Size:         size,
	}, nil
}

func shortNameFromEntry(entry []byte) string {
	base := entry[0:8]
	baseEnd := 8
	for baseEnd > 0 && base[baseEnd-1] == 0x20 {
		baseEnd--
	}
	ext := entry[8:11]

	var b strings.Builder
	for i := 0; i < baseEnd; i++ {
		b.WriteByte(base[i])
	}
	if ext[0] != 0x20 {
		b.WriteByte('.')
		for i := 0; i < len(ext) && ext[i] != 0x20; i++ {
			b.WriteByte(ext[i])
		}
	}
	return b.String()
}

var utf16LittleEndianDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// decodeLFNChunk reassembles the UTF-16 code units stored across the three
// name fragments of a single LFN directory slot into a UTF-8 string,
// stopping at the first NUL code unit.
func decodeLFNChunk(entry []byte) string {
	raw := make([]byte, 0, 26)
	raw = append(raw, entry[1:11]...)
	raw = append(raw, entry[14:26]...)
	raw = append(raw, entry[28:32]...)

	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			raw = raw[:i]
			break
		}
	}

	decoded, err := utf16LittleEndianDecoder.Bytes(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}
