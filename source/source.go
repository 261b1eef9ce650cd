// Package source opens disk images for reading.
//
// Images are often shipped compressed. Open recognizes gzip, zstd, bzip2, snappy and S2 streams
// by their magic bytes and zlib streams by the ".zlib" extension and inflates them into memory,
// so the result is always seekable like a plain image file.
package source

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/aligator/fat12"
	"github.com/aligator/fat12/checkpoint"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// DefaultMaxSize limits the inflated size of compressed images.
// It is far above the 1.44 MB of a floppy and the FAT16 volumes this is used with.
const DefaultMaxSize = 64 << 20

// Compression is the encoding an image was stored with.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
	Bzip2
	Snappy
	S2
	Zlib
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Bzip2:
		return "bzip2"
	case Snappy:
		return "snappy"
	case S2:
		return "s2"
	case Zlib:
		return "zlib"
	default:
		return "unknown"
	}
}

var magics = []struct {
	compression Compression
	magic       []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{Bzip2, []byte("BZh")},
	{Snappy, []byte("\xff\x06\x00\x00sNaPpY")},
	{S2, []byte("\xff\x06\x00\x00S2sTwO")},
}

// magicSize is enough bytes to tell all known streams apart.
const magicSize = 10

// Detect guesses the compression from the first bytes of a file and its name.
func Detect(name string, head []byte) Compression {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.compression
		}
	}

	// A zlib header has no reliable magic, so only the name can tell.
	if strings.EqualFold(filepath.Ext(name), ".zlib") {
		return Zlib
	}

	return None
}

// Options control how an image is opened.
type Options struct {
	// MaxSize limits the inflated size of a compressed image. 0 means DefaultMaxSize.
	MaxSize int64
}

type readSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// Image is an opened disk image positioned at its first byte.
type Image struct {
	readSeekerAt
	name        string
	compression Compression
	closer      io.Closer
}

// Name returns the path the image was opened from.
func (i *Image) Name() string {
	return i.name
}

// Compression returns how the image was stored.
func (i *Image) Compression() Compression {
	return i.compression
}

// Close releases the underlying file.
func (i *Image) Close() error {
	if i.closer == nil {
		return nil
	}
	err := i.closer.Close()
	i.closer = nil
	return checkpoint.Wrap(err, fat12.ErrIO)
}

// Open opens the image at path from fs.
// Failures to open or read the file are reported as fat12.ErrIO, a corrupt or
// oversized compressed stream as fat12.ErrFormat.
func Open(fs afero.Fs, path string, opts Options) (*Image, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, checkpoint.Wrapf(err, fat12.ErrIO, "open image")
	}

	head := make([]byte, magicSize)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		file.Close()
		return nil, checkpoint.Wrapf(err, fat12.ErrIO, "read image header")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, checkpoint.Wrapf(err, fat12.ErrIO, "rewind image")
	}

	compression := Detect(path, head[:n])
	if compression == None {
		return &Image{
			readSeekerAt: file,
			name:         path,
			compression:  None,
			closer:       file,
		}, nil
	}

	// The compressed file is not needed anymore once it is inflated.
	defer file.Close()

	data, err := inflate(compression, file, maxSize)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	return &Image{
		readSeekerAt: bytes.NewReader(data),
		name:         path,
		compression:  compression,
	}, nil
}

// inflate decompresses r completely, reading at most maxSize bytes of output.
func inflate(compression Compression, r io.Reader, maxSize int64) ([]byte, error) {
	decompressed, closeFn, err := newDecompressor(compression, r)
	if err != nil {
		return nil, checkpoint.Wrapf(err, fat12.ErrFormat, "open %v stream", compression)
	}
	defer closeFn()

	data, err := io.ReadAll(io.LimitReader(decompressed, maxSize+1))
	if err != nil {
		return nil, checkpoint.Wrapf(err, fat12.ErrFormat, "inflate %v stream", compression)
	}
	if int64(len(data)) > maxSize {
		return nil, checkpoint.New(fat12.ErrFormat, "%v stream inflates to more than %d bytes", compression, maxSize)
	}

	return data, nil
}

func newDecompressor(compression Compression, r io.Reader) (io.Reader, func(), error) {
	nop := func() {}

	switch compression {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nop, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nop, err
		}
		return zr, zr.Close, nil
	case Bzip2:
		zr, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
		if err != nil {
			return nil, nop, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case Snappy:
		return snappy.NewReader(r), nop, nil
	case S2:
		return s2.NewReader(r), nop, nil
	case Zlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, nop, err
		}
		return zr, func() { _ = zr.Close() }, nil
	default:
		return nil, nop, errors.New("unsupported compression " + compression.String())
	}
}
