package fat12

import (
	"strings"
	"time"
)

// DirectoryTest decides whether an entry with the given attributes is listed as a directory.
type DirectoryTest func(attr Attr) bool

// LiteralDirectoryTest reproduces the historic test of the listing: (attr | SubDir) == 0.
// Since the SubDir bit is always part of the result this never reports a directory,
// so every entry is listed as a file. It is the default of Scanner.
func LiteralDirectoryTest(attr Attr) bool {
	return (attr | AttrSubDir) == 0
}

// SubDirFlagTest reports a directory if the SubDir attribute bit is set.
// Choosing it changes the listing: directories get the 'd' marker and lose the trailing ".ext".
func SubDirFlagTest(attr Attr) bool {
	return attr&AttrSubDir != 0
}

// BaseName returns the file name without the space padding.
func (e DirEntry) BaseName() string {
	return trimPadding(e.FileName[:])
}

// Extension returns the file extension without the space padding.
func (e DirEntry) Extension() string {
	return trimPadding(e.FileExt[:])
}

// Created decodes the creation date and time.
func (e DirEntry) Created() (time.Time, error) {
	return DecodeDateTime(e.CreateDate, e.CreateTime)
}

func trimPadding(b []byte) string {
	return strings.TrimSpace(string(b))
}
