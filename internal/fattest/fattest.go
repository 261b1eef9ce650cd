// Package fattest builds FAT12/16 images for tests.
//
// Records are packed with restruct from plain structs, so images are assembled
// without the layout tables of the package under test.
package fattest

import (
	"encoding/binary"
	"testing"

	"github.com/go-restruct/restruct"
)

// DirEntrySize is the size of a packed DirEntry.
const DirEntrySize = 32

// BootSector is a complete 512 byte FAT12/16 boot sector.
type BootSector struct {
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
	Reserved1         uint8
	BootSignature     uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
	BootCode          [448]byte
	Signature         uint16
}

// DirEntry is a 32 byte directory slot.
type DirEntry struct {
	Name           [8]byte
	Ext            [3]byte
	Attributes     uint8
	Reserved       uint16
	CreateTime     uint16
	CreateDate     uint16
	LastAccessDate uint16
	ClusterHigh    uint16
	WriteTime      uint16
	WriteDate      uint16
	FirstCluster   uint16
	FileSize       uint32
}

// Floppy returns the boot sector of a standard 1.44 MB floppy.
func Floppy() BootSector {
	b := BootSector{
		JumpBoot:          [3]byte{0xEB, 0x3C, 0x90},
		BytesPerSector:    512,
		SectorsPerCluster: 1,
		ReservedSectors:   1,
		FATs:              2,
		RootDirEntries:    224,
		TotalSectors:      2880,
		Media:             0xF0,
		SectorsPerFAT:     9,
		SectorsPerTrack:   18,
		Heads:             2,
		BootSignature:     0x29,
		VolumeID:          0x1234ABCD,
		Signature:         0xAA55,
	}
	copy(b.OSName[:], "MSDOS5.0")
	copy(b.VolumeLabel[:], "TESTDISK   ")
	copy(b.FSType[:], "FAT12   ")
	return b
}

// Pack encodes v in little-endian byte order.
func Pack(t testing.TB, v interface{}) []byte {
	t.Helper()

	data, err := restruct.Pack(binary.LittleEndian, v)
	if err != nil {
		t.Fatalf("could not pack fixture: %v", err)
	}
	return data
}

// Name83 pads name and ext with spaces.
func Name83(name, ext string) ([8]byte, [3]byte) {
	var n [8]byte
	var e [3]byte
	copy(n[:], "        ")
	copy(e[:], "   ")
	copy(n[:], name)
	copy(e[:], ext)
	return n, e
}

// Entry builds a slot for name.ext. The creation and write times are both set to date and time.
func Entry(name, ext string, attr uint8, size uint32, date, time uint16) DirEntry {
	n, e := Name83(name, ext)
	return DirEntry{
		Name:       n,
		Ext:        e,
		Attributes: attr,
		CreateTime: time,
		CreateDate: date,
		WriteTime:  time,
		WriteDate:  date,
		FileSize:   size,
	}
}

// RootDirOffset is the position of the root directory for boot, assuming a single boot sector.
func RootDirOffset(boot BootSector) int {
	return int(boot.BytesPerSector) * (int(boot.FATs)*int(boot.SectorsPerFAT) + 1)
}

// Image lays out a boot sector followed by zeroed FATs and the root directory.
// The root directory table is zero filled after the given entries. Entries beyond
// RootDirEntries are still written, so tests can check that a scan stops at the table end.
func Image(t testing.TB, boot BootSector, entries ...DirEntry) []byte {
	t.Helper()

	rootStart := RootDirOffset(boot)
	slots := max(int(boot.RootDirEntries), len(entries))
	image := make([]byte, rootStart+slots*DirEntrySize)
	copy(image, Pack(t, &boot))

	for i, entry := range entries {
		copy(image[rootStart+i*DirEntrySize:], Pack(t, &entry))
	}
	return image
}
