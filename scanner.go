package fat12

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aligator/fat12/checkpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

const (
	// endOfDirectoryMask is applied to the first word of a slot. A zero result ends the scan.
	endOfDirectoryMask = 0xFFF0
	// skipAttrMask selects the entries which are not listed.
	skipAttrMask = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeLabel
)

// RootDirOffset returns the byte offset of the root directory.
// The FAT area is assumed to follow exactly one boot sector, which is the layout of the floppy images
// this tool is made for. ReservedSectors is intentionally not taken into account.
func RootDirOffset(info DiskInfo) int64 {
	return int64(info.BytesPerSector) * (int64(info.FATs)*int64(info.SectorsPerFAT) + 1)
}

// IsEndOfDirectory reports whether a raw slot ends the root directory scan.
// The first two bytes are read as a little-endian word of which every bit above the low nibble has to be clear.
func IsEndOfDirectory(slot []byte) bool {
	if len(slot) < 2 {
		return true
	}
	return binary.LittleEndian.Uint16(slot)&endOfDirectoryMask == 0
}

// Listing is a root directory entry selected for display.
type Listing struct {
	Entry   DirEntry
	IsDir   bool
	Created time.Time
}

// String renders the listing line: <d|f> <size> <name>[.<ext>] <created>.
// Files always get the dot, also if the extension is empty.
func (l Listing) String() string {
	marker := 'f'
	name := l.Entry.BaseName()
	if l.IsDir {
		marker = 'd'
	} else {
		name += "." + l.Entry.Extension()
	}

	return fmt.Sprintf("%c %d %s %s", marker, l.Entry.FileSize, name, l.Created.Format(TimestampLayout))
}

// Scanner walks the fixed size root directory table of a FAT12/16 image.
type Scanner struct {
	// IsDirectory decides the 'd' or 'f' marker. Defaults to LiteralDirectoryTest.
	IsDirectory DirectoryTest
	// Logger receives debug output about skipped slots. Defaults to a nop logger.
	Logger log.Logger
}

// Scan seeks r to the root directory and reads it slot by slot.
// It stops at the first slot recognized by IsEndOfDirectory or after info.RootDirEntries slots.
// Slots with any of the ReadOnly, Hidden, System or VolumeLabel attributes are skipped.
// Every other slot is passed to emit as soon as it is decoded.
//
// The first failure aborts the scan: ErrIO if seeking or reading fails, ErrInvalidTimestamp
// if the creation time cannot be decoded, or whatever emit returned.
func (s *Scanner) Scan(info DiskInfo, r io.ReadSeeker, emit func(Listing) error) error {
	isDir := s.IsDirectory
	if isDir == nil {
		isDir = LiteralDirectoryTest
	}
	logger := s.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	offset := RootDirOffset(info)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return checkpoint.Wrapf(err, ErrIO, "seek to root directory at %d", offset)
	}
	level.Debug(logger).Log("msg", "scanning root directory", "offset", offset, "slots", info.RootDirEntries)

	slot := make([]byte, DirEntrySize)
	for i := 0; i < int(info.RootDirEntries); i++ {
		if _, err := io.ReadFull(r, slot); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return checkpoint.Wrapf(err, ErrIO, "read root directory slot %d", i)
		}

		if IsEndOfDirectory(slot) {
			level.Debug(logger).Log("msg", "end of directory", "slot", i)
			return nil
		}

		entry, err := ParseDirEntry(slot)
		if err != nil {
			return checkpoint.From(err)
		}

		if entry.Attributes&skipAttrMask != 0 {
			level.Debug(logger).Log("msg", "skipping entry", "slot", i, "name", entry.BaseName(), "attributes", fmt.Sprintf("0x%02X", uint8(entry.Attributes)))
			continue
		}

		created, err := entry.Created()
		if err != nil {
			return checkpoint.Wrapf(err, nil, "creation time of %q in slot %d", entry.BaseName(), i)
		}

		err = emit(Listing{
			Entry:   entry,
			IsDir:   isDir(entry.Attributes),
			Created: created,
		})
		if err != nil {
			return checkpoint.From(err)
		}
	}

	return nil
}

// ListRootDir scans the root directory with the default Scanner and returns one line per listed entry.
// On failure the lines emitted before it are returned together with the error.
func ListRootDir(info DiskInfo, r io.ReadSeeker) ([]string, error) {
	var lines []string
	err := (&Scanner{}).Scan(info, r, func(l Listing) error {
		lines = append(lines, l.String())
		return nil
	})
	return lines, err
}
