package fat12

import (
	"errors"
	"io"

	"github.com/aligator/fat12/checkpoint"
)

// ParseBootSector decodes the boot sector in buf.
// buf must hold at least BootSectorSize bytes, otherwise ErrFormat is returned.
func ParseBootSector(buf []byte) (DiskInfo, error) {
	var info DiskInfo
	if err := bootSectorLayout.decode(buf, &info); err != nil {
		return DiskInfo{}, checkpoint.From(err)
	}
	return info, nil
}

// ReadDiskInfo reads the first sector from r and decodes it.
// r has to be positioned at the start of the image.
func ReadDiskInfo(r io.Reader) (DiskInfo, error) {
	buf := make([]byte, BootSectorSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return DiskInfo{}, checkpoint.Wrapf(err, ErrIO, "read boot sector")
	}

	return ParseBootSector(buf)
}

// Label returns the volume label without the space padding.
func (d DiskInfo) Label() string {
	return trimPadding(d.VolumeLabel[:])
}

// FileSystemType returns the filesystem type tag, e.g. "FAT12", without padding.
// The tag is informational only, the FAT type used by FATReader is derived from the cluster count.
func (d DiskInfo) FileSystemType() string {
	return trimPadding(d.FSType[:])
}
