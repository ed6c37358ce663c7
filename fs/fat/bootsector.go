// Package fat implements a read-only FAT12/16/32 filesystem reader: boot
// sector decoding, FAT table walking, directory iteration with long file
// name reassembly, and random-access file reads.
package fat

import (
	"encoding/binary"

	"github.com/Amjad50/OS/kernel"
)

// Type identifies the on-disk FAT layout variant.
type Type uint8

const (
	Fat12 Type = iota
	Fat16
	Fat32
)

func (t Type) String() string {
	switch t {
	case Fat12:
		return "FAT12"
	case Fat16:
		return "FAT16"
	case Fat32:
		return "FAT32"
	default:
		return "unknown"
	}
}

var errInvalidBootSector = &kernel.Error{Module: "fat", Message: "boot sector signature mismatch"}

const (
	directoryEntrySize  = 32
	bootSectorSize      = 512
	bootSignatureOffset = 510
	bootSignature       = 0xAA55
)

// rawBootSector is the on-disk layout of a FAT12/16/32 boot sector, common
// fields only; the extended block (bytes 36 onward) is decoded separately
// depending on the detected Type since FAT12/16 and FAT32 disagree on its
// layout.
type rawBootSector struct {
	jmpBoot              [3]byte
	oemName              [8]byte
	bytesPerSector       uint16
	sectorsPerCluster    uint8
	reservedSectorsCount uint16
	numberOfFATs         uint8
	rootEntryCount       uint16
	totalSectors16       uint16
	mediaType            uint8
	fatSize16            uint16
	sectorsPerTrack      uint16
	numberOfHeads        uint16
	hiddenSectors        uint32
	totalSectors32       uint32
}

const rawBootSectorFixedSize = 36

func decodeRawBootSector(b []byte) rawBootSector {
	return rawBootSector{
		jmpBoot:              [3]byte{b[0], b[1], b[2]},
		oemName:              [8]byte(b[3:11]),
		bytesPerSector:       binary.LittleEndian.Uint16(b[11:13]),
		sectorsPerCluster:    b[13],
		reservedSectorsCount: binary.LittleEndian.Uint16(b[14:16]),
		numberOfFATs:         b[16],
		rootEntryCount:       binary.LittleEndian.Uint16(b[17:19]),
		totalSectors16:       binary.LittleEndian.Uint16(b[19:21]),
		mediaType:            b[21],
		fatSize16:            binary.LittleEndian.Uint16(b[22:24]),
		sectorsPerTrack:      binary.LittleEndian.Uint16(b[24:26]),
		numberOfHeads:        binary.LittleEndian.Uint16(b[26:28]),
		hiddenSectors:        binary.LittleEndian.Uint32(b[28:32]),
		totalSectors32:       binary.LittleEndian.Uint32(b[32:36]),
	}
}

// BootSector is the decoded form of a FAT boot sector, together with the
// FAT Type inferred from it.
type BootSector struct {
	ty       Type
	raw      rawBootSector
	volLabel [11]byte

	// fat32RootCluster and fat32FatSize are only meaningful when ty == Fat32.
	fat32RootCluster uint32
	fat32FatSize     uint32
}

// decodeBootSector parses the raw bytes of a boot sector (exactly
// bootSectorSize bytes) read from the start of a volume. sizeInSectors is
// the total size of the volume, used to classify FAT12 vs FAT16 vs FAT32 per
// the cluster-count thresholds.
func decodeBootSector(b []byte, sizeInSectors uint32) (*BootSector, *kernel.Error) {
	if len(b) < bootSectorSize {
		return nil, errInvalidBootSector
	}

	if binary.LittleEndian.Uint16(b[bootSignatureOffset:bootSignatureOffset+2]) != bootSignature {
		return nil, errInvalidBootSector
	}

	raw := decodeRawBootSector(b)

	var countOfClusters uint32
	if raw.sectorsPerCluster != 0 {
		countOfClusters = sizeInSectors / uint32(raw.sectorsPerCluster)
	}

	var ty Type
	switch {
	case raw.fatSize16 == 0:
		ty = Fat32
	case countOfClusters <= 4084:
		ty = Fat12
	case countOfClusters <= 65524:
		ty = Fat16
	default:
		ty = Fat32
	}

	bs := &BootSector{ty: ty, raw: raw}

	if ty == Fat32 {
		// FAT32 extended BPB: fat_size_32(4) ext_flags(2) fs_version(2)
		// root_cluster(4) fs_info(2) backup_boot_sector(2) reserved(12)
		// drive_number(1) reserved_2(1) boot_signature(1) volume_id(4)
		// volume_label(11) ...
		ext := b[rawBootSectorFixedSize:]
		bs.fat32FatSize = binary.LittleEndian.Uint32(ext[0:4])
		bs.fat32RootCluster = binary.LittleEndian.Uint32(ext[4:8])
		copy(bs.volLabel[:], ext[26:37])
	} else {
		// FAT12/16 extended BPB: drive_number(1) reserved(1)
		// boot_signature(1) volume_id(4) volume_label(11) ...
		ext := b[rawBootSectorFixedSize:]
		copy(bs.volLabel[:], ext[7:18])
	}

	return bs, nil
}

// Type returns the FAT variant this boot sector describes.
func (b *BootSector) Type() Type { return b.ty }

// BytesPerSector returns the sector size in bytes.
func (b *BootSector) BytesPerSector() uint16 { return b.raw.bytesPerSector }

// SectorsPerCluster returns the number of sectors in a single cluster.
func (b *BootSector) SectorsPerCluster() uint8 { return b.raw.sectorsPerCluster }

// BytesPerCluster returns the size, in bytes, of a single cluster.
func (b *BootSector) BytesPerCluster() uint32 {
	return uint32(b.raw.sectorsPerCluster) * uint32(b.raw.bytesPerSector)
}

// ReservedSectorsCount returns the number of reserved sectors preceding the
// first FAT copy.
func (b *BootSector) ReservedSectorsCount() uint16 { return b.raw.reservedSectorsCount }

// TotalSectors returns the total sector count of the volume.
func (b *BootSector) TotalSectors() uint32 {
	if b.raw.totalSectors16 != 0 {
		return uint32(b.raw.totalSectors16)
	}
	return b.raw.totalSectors32
}

// FatSizeInSectors returns the size, in sectors, of a single FAT copy.
func (b *BootSector) FatSizeInSectors() uint32 {
	if b.ty == Fat32 {
		return b.fat32FatSize
	}
	return uint32(b.raw.fatSize16)
}

// NumberOfFATs returns the number of FAT copies stored on the volume.
func (b *BootSector) NumberOfFATs() uint8 { return b.raw.numberOfFATs }

// FatStartSector returns the sector offset (relative to the volume start) of
// the first FAT copy.
func (b *BootSector) FatStartSector() uint32 { return uint32(b.raw.reservedSectorsCount) }

// RootDirSectors returns the number of sectors occupied by the FAT12/16 root
// directory region (always 0 for FAT32, which stores the root directory in
// the regular cluster chain).
func (b *BootSector) RootDirSectors() uint32 {
	return (uint32(b.raw.rootEntryCount)*directoryEntrySize + (uint32(b.raw.bytesPerSector) - 1)) / uint32(b.raw.bytesPerSector)
}

// RootDirStartSector returns the sector offset of the FAT12/16 root
// directory region.
func (b *BootSector) RootDirStartSector() uint32 {
	return b.FatStartSector() + uint32(b.NumberOfFATs())*b.FatSizeInSectors()
}

// DataStartSector returns the sector offset of the first data cluster (2).
func (b *BootSector) DataStartSector() uint32 {
	return b.RootDirStartSector() + b.RootDirSectors()
}

// RootCluster returns the first cluster of the FAT32 root directory. It is
// only meaningful when Type() == Fat32.
func (b *BootSector) RootCluster() uint32 { return b.fat32RootCluster }

// VolumeLabel returns the 11-byte volume label field, trimmed of trailing
// spaces and NUL bytes.
func (b *BootSector) VolumeLabel() string {
	end := len(b.volLabel)
	for end > 0 && (b.volLabel[end-1] == ' ' || b.volLabel[end-1] == 0) {
		end--
	}
	return string(b.volLabel[:end])
}
