package fat12

import (
	"errors"
	"fmt"
	"io"

	"github.com/aligator/fat12/checkpoint"
)

// FATType is the width of the entries of a file allocation table.
type FATType int

const (
	FAT12 FATType = 12
	FAT16 FATType = 16
)

func (t FATType) String() string {
	return fmt.Sprintf("FAT%d", int(t))
}

// Cluster count limits which decide between FAT12, FAT16 and FAT32.
const (
	maxFAT12Clusters = 4084
	maxFAT16Clusters = 65524
)

// firstCluster is the number of the first data cluster. Cluster 0 and 1 are reserved entries.
const firstCluster = 2

// fatEntry is the value stored in one slot of the FAT.
type fatEntry uint16

func (e fatEntry) IsFree() bool {
	return e == 0
}

func (e fatEntry) IsBad(t FATType) bool {
	if t == FAT12 {
		return e == 0xFF7
	}
	return e == 0xFFF7
}

func (e fatEntry) IsEOF(t FATType) bool {
	if t == FAT12 {
		return e >= 0xFF8
	}
	return e >= 0xFFF8
}

// FATReader resolves cluster chains using the first FAT of an image.
// Like the root directory scan it assumes the FAT area begins right after a single boot sector.
type FATReader struct {
	r        io.ReaderAt
	offset   int64
	size     int64
	fatType  FATType
	clusters uint32
}

// NewFATReader derives the FAT type and position from info.
// It fails with ErrFormat if the geometry does not describe a FAT12 or FAT16 volume.
func NewFATReader(info DiskInfo, r io.ReaderAt) (*FATReader, error) {
	if info.BytesPerSector == 0 || info.SectorsPerCluster == 0 || info.FATs == 0 || info.SectorsPerFAT == 0 {
		return nil, checkpoint.New(ErrFormat, "incomplete geometry: %d bytes per sector, %d sectors per cluster, %d FATs of %d sectors",
			info.BytesPerSector, info.SectorsPerCluster, info.FATs, info.SectorsPerFAT)
	}

	bytesPerSector := uint32(info.BytesPerSector)
	rootDirSectors := (uint32(info.RootDirEntries)*DirEntrySize + bytesPerSector - 1) / bytesPerSector
	firstDataSector := 1 + uint32(info.FATs)*uint32(info.SectorsPerFAT) + rootDirSectors

	totalSectors := uint32(info.TotalSectors)
	if totalSectors == 0 {
		totalSectors = info.TotalSectors32
	}
	if totalSectors <= firstDataSector {
		return nil, checkpoint.New(ErrFormat, "%d total sectors leave no data area after sector %d", totalSectors, firstDataSector)
	}

	clusters := (totalSectors - firstDataSector) / uint32(info.SectorsPerCluster)

	var fatType FATType
	switch {
	case clusters <= maxFAT12Clusters:
		fatType = FAT12
	case clusters <= maxFAT16Clusters:
		fatType = FAT16
	default:
		return nil, checkpoint.New(ErrFormat, "%d clusters is a FAT32 volume", clusters)
	}

	return &FATReader{
		r:        r,
		offset:   int64(info.BytesPerSector),
		size:     int64(info.SectorsPerFAT) * int64(info.BytesPerSector),
		fatType:  fatType,
		clusters: clusters,
	}, nil
}

// Type returns whether the FAT uses 12 or 16 bit entries.
func (f *FATReader) Type() FATType {
	return f.fatType
}

// Clusters returns the number of data clusters.
func (f *FATReader) Clusters() uint32 {
	return f.clusters
}

// validCluster reports whether c addresses a data cluster.
func (f *FATReader) validCluster(c uint16) bool {
	return c >= firstCluster && uint32(c) < f.clusters+firstCluster
}

// entry reads the FAT slot of cluster c.
func (f *FATReader) entry(c uint16) (fatEntry, error) {
	pos := int64(c) * 2
	if f.fatType == FAT12 {
		// 12 bit entries: two entries share three bytes.
		pos = int64(c) + int64(c)/2
	}
	if pos+2 > f.size {
		return 0, checkpoint.New(ErrFormat, "cluster %d lies beyond the FAT of %d bytes", c, f.size)
	}

	buf := make([]byte, 2)
	n, err := f.r.ReadAt(buf, f.offset+pos)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, checkpoint.Wrapf(err, ErrIO, "read FAT entry of cluster %d", c)
	}

	value := uint16(buf[0]) | uint16(buf[1])<<8
	if f.fatType == FAT12 {
		if c&1 == 1 {
			value >>= 4
		} else {
			value &= 0x0FFF
		}
	}

	return fatEntry(value), nil
}

// Chain returns an iterator over the cluster chain beginning at start.
// A start cluster of 0, as used by empty files, yields an empty chain.
func (f *FATReader) Chain(start uint16) *ChainIterator {
	return &ChainIterator{fat: f, start: start}
}

// ChainIterator walks a cluster chain lazily, reading one FAT entry per step.
//
//	it := fat.Chain(entry.FirstCluster)
//	for it.Next() {
//		fmt.Println(it.Cluster())
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// A chain longer than the number of clusters must contain a loop and ends with ErrFormat,
// so iteration always terminates.
type ChainIterator struct {
	fat     *FATReader
	start   uint16
	current uint16
	steps   uint32
	started bool
	done    bool
	err     error
}

// Next advances to the next cluster. It returns false at the end of the chain or on an error.
func (it *ChainIterator) Next() bool {
	if it.done {
		return false
	}

	if !it.started {
		it.started = true
		if it.start == 0 {
			return it.finish(nil)
		}
		if !it.fat.validCluster(it.start) {
			return it.finish(checkpoint.New(ErrFormat, "start cluster %d out of range", it.start))
		}
		it.current = it.start
		it.steps = 1
		return true
	}

	next, err := it.fat.entry(it.current)
	if err != nil {
		return it.finish(checkpoint.From(err))
	}

	switch {
	case next.IsEOF(it.fat.fatType):
		return it.finish(nil)
	case next.IsBad(it.fat.fatType):
		return it.finish(checkpoint.New(ErrFormat, "cluster %d links to a bad cluster", it.current))
	case next.IsFree():
		return it.finish(checkpoint.New(ErrFormat, "cluster %d links to a free cluster", it.current))
	case !it.fat.validCluster(uint16(next)):
		return it.finish(checkpoint.New(ErrFormat, "cluster %d links to cluster %d which is out of range", it.current, next))
	}

	it.steps++
	if it.steps > it.fat.clusters {
		return it.finish(checkpoint.New(ErrFormat, "chain starting at cluster %d contains a loop", it.start))
	}

	it.current = uint16(next)
	return true
}

func (it *ChainIterator) finish(err error) bool {
	it.done = true
	it.err = err
	return false
}

// Cluster returns the cluster reached by the last successful call to Next.
func (it *ChainIterator) Cluster() uint16 {
	return it.current
}

// Err returns the error which stopped the iteration, if any.
func (it *ChainIterator) Err() error {
	return it.err
}

// Reset rewinds the iterator to the start cluster.
func (it *ChainIterator) Reset() {
	it.current = 0
	it.steps = 0
	it.started = false
	it.done = false
	it.err = nil
}

// Collect reads the whole chain.
func (it *ChainIterator) Collect() ([]uint16, error) {
	var clusters []uint16
	for it.Next() {
		clusters = append(clusters, it.Cluster())
	}
	return clusters, it.Err()
}
