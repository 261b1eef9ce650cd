package fat12

import "github.com/aligator/fat12/internal/fattest"

// fileEntry builds a slot for name.ext with the given attributes, size and creation time.
func fileEntry(name, ext string, attr Attr, size uint32, date, time uint16) fattest.DirEntry {
	return fattest.Entry(name, ext, uint8(attr), size, date, time)
}
