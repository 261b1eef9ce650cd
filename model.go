// File model contains the records decoded from the FAT structures on disk.

package fat12

// BootSectorSize is the number of bytes read from the beginning of an image to decode DiskInfo.
const BootSectorSize = 512

// DirEntrySize is the size of a single directory slot.
const DirEntrySize = 32

// DiskInfo holds the BIOS Parameter Block and the identification fields of a FAT12/16 boot sector.
type DiskInfo struct {
	JumpBoot          [3]byte
	OSName            [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATs              uint8
	RootDirEntries    uint16
	TotalSectors      uint16
	Media             uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	Heads             uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	DriveNumber       uint8
	BootSignature     uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
	Signature         uint16
}

// Attr is the attribute byte of a directory entry.
type Attr uint8

const (
	AttrReadOnly    Attr = 0x01
	AttrHidden      Attr = 0x02
	AttrSystem      Attr = 0x04
	AttrVolumeLabel Attr = 0x08
	AttrSubDir      Attr = 0x10
	AttrArchive     Attr = 0x20
)

// Has reports whether all bits of flag are set.
func (a Attr) Has(flag Attr) bool {
	return a&flag == flag
}

// DirEntry is one 32 byte directory slot.
type DirEntry struct {
	FileName       [8]byte
	FileExt        [3]byte
	Attributes     Attr
	Reserved       uint16
	CreateTime     uint16
	CreateDate     uint16
	LastAccessDate uint16
	LastWriteTime  uint16
	LastWriteDate  uint16
	FirstCluster   uint16
	FileSize       uint32
}
