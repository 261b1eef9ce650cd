package fat12

import (
	"encoding/binary"
	"fmt"

	"github.com/aligator/fat12/checkpoint"
)

// field describes where a single value lives inside an on-disk record.
// ref returns a pointer to the destination (or a slice over a byte array) inside T.
// The type of that destination decides how the bytes are decoded:
//
//	*uint8, *Attr    1 byte
//	*uint16          2 bytes little-endian
//	*uint32          4 bytes little-endian
//	[]byte           raw copy of width bytes
type field[T any] struct {
	name   string
	offset int
	width  int
	ref    func(*T) interface{}
}

// fieldLayout is the complete table of fields of one record type.
type fieldLayout[T any] []field[T]

// size returns the number of bytes a buffer needs so that every field can be decoded.
func (l fieldLayout[T]) size() int {
	size := 0
	for _, f := range l {
		if end := f.offset + f.width; end > size {
			size = end
		}
	}
	return size
}

// decode extracts all fields of the layout from buf into out.
// It fails with ErrFormat without touching buf if buf is too short.
func (l fieldLayout[T]) decode(buf []byte, out *T) error {
	if need := l.size(); len(buf) < need {
		return checkpoint.New(ErrFormat, "buffer holds %d bytes, need %d", len(buf), need)
	}

	for _, f := range l {
		raw := buf[f.offset : f.offset+f.width]

		switch dst := f.ref(out).(type) {
		case *uint8:
			if f.width != 1 {
				return widthMismatch(f.name, f.width, 1)
			}
			*dst = raw[0]
		case *Attr:
			if f.width != 1 {
				return widthMismatch(f.name, f.width, 1)
			}
			*dst = Attr(raw[0])
		case *uint16:
			if f.width != 2 {
				return widthMismatch(f.name, f.width, 2)
			}
			*dst = binary.LittleEndian.Uint16(raw)
		case *uint32:
			if f.width != 4 {
				return widthMismatch(f.name, f.width, 4)
			}
			*dst = binary.LittleEndian.Uint32(raw)
		case []byte:
			if f.width != len(dst) {
				return widthMismatch(f.name, f.width, len(dst))
			}
			copy(dst, raw)
		default:
			return fmt.Errorf("field %s: unsupported destination %T", f.name, dst)
		}
	}

	return nil
}

func widthMismatch(name string, width, want int) error {
	return fmt.Errorf("field %s: width %d does not fit its destination of %d bytes", name, width, want)
}

// bootSectorLayout follows the BPB of DOS 4.0 with the extended boot signature, as used by FAT12 and FAT16.
// The filesystem type is the standard 8 byte tag. The signature at 510 makes the layout span the whole sector.
var bootSectorLayout = fieldLayout[DiskInfo]{
	{"jump_boot", 0, 3, func(d *DiskInfo) interface{} { return d.JumpBoot[:] }},
	{"os_name", 3, 8, func(d *DiskInfo) interface{} { return d.OSName[:] }},
	{"bytes_per_sector", 11, 2, func(d *DiskInfo) interface{} { return &d.BytesPerSector }},
	{"sectors_per_cluster", 13, 1, func(d *DiskInfo) interface{} { return &d.SectorsPerCluster }},
	{"reserved_sectors", 14, 2, func(d *DiskInfo) interface{} { return &d.ReservedSectors }},
	{"fats", 16, 1, func(d *DiskInfo) interface{} { return &d.FATs }},
	{"root_dir_entries", 17, 2, func(d *DiskInfo) interface{} { return &d.RootDirEntries }},
	{"total_sectors", 19, 2, func(d *DiskInfo) interface{} { return &d.TotalSectors }},
	{"media", 21, 1, func(d *DiskInfo) interface{} { return &d.Media }},
	{"sectors_per_fat", 22, 2, func(d *DiskInfo) interface{} { return &d.SectorsPerFAT }},
	{"sectors_per_track", 24, 2, func(d *DiskInfo) interface{} { return &d.SectorsPerTrack }},
	{"heads", 26, 2, func(d *DiskInfo) interface{} { return &d.Heads }},
	{"hidden_sectors", 28, 4, func(d *DiskInfo) interface{} { return &d.HiddenSectors }},
	{"total_sectors_32", 32, 4, func(d *DiskInfo) interface{} { return &d.TotalSectors32 }},
	{"drive_number", 36, 1, func(d *DiskInfo) interface{} { return &d.DriveNumber }},
	{"boot_signature", 38, 1, func(d *DiskInfo) interface{} { return &d.BootSignature }},
	{"volume_id", 39, 4, func(d *DiskInfo) interface{} { return &d.VolumeID }},
	{"volume_label", 43, 11, func(d *DiskInfo) interface{} { return d.VolumeLabel[:] }},
	{"fs_type", 54, 8, func(d *DiskInfo) interface{} { return d.FSType[:] }},
	{"signature", 510, 2, func(d *DiskInfo) interface{} { return &d.Signature }},
}

// dirEntryLayout is the short (8.3) directory entry. Bytes 20-21 hold the high cluster word on FAT32
// and are not decoded.
var dirEntryLayout = fieldLayout[DirEntry]{
	{"file_name", 0, 8, func(e *DirEntry) interface{} { return e.FileName[:] }},
	{"file_ext", 8, 3, func(e *DirEntry) interface{} { return e.FileExt[:] }},
	{"attributes", 11, 1, func(e *DirEntry) interface{} { return &e.Attributes }},
	{"reserved", 12, 2, func(e *DirEntry) interface{} { return &e.Reserved }},
	{"create_time", 14, 2, func(e *DirEntry) interface{} { return &e.CreateTime }},
	{"create_date", 16, 2, func(e *DirEntry) interface{} { return &e.CreateDate }},
	{"last_access_date", 18, 2, func(e *DirEntry) interface{} { return &e.LastAccessDate }},
	{"last_write_time", 22, 2, func(e *DirEntry) interface{} { return &e.LastWriteTime }},
	{"last_write_date", 24, 2, func(e *DirEntry) interface{} { return &e.LastWriteDate }},
	{"flc", 26, 2, func(e *DirEntry) interface{} { return &e.FirstCluster }},
	{"file_size", 28, 4, func(e *DirEntry) interface{} { return &e.FileSize }},
}
