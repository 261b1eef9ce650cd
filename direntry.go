package fat12

import "github.com/aligator/fat12/checkpoint"

// ParseDirEntry decodes a single directory slot.
// buf must hold at least DirEntrySize bytes, otherwise ErrFormat is returned.
func ParseDirEntry(buf []byte) (DirEntry, error) {
	var entry DirEntry
	if err := dirEntryLayout.decode(buf, &entry); err != nil {
		return DirEntry{}, checkpoint.From(err)
	}
	return entry, nil
}
