package fat12

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/aligator/fat12/internal/fattest"
	"github.com/google/go-cmp/cmp"
)

// setFAT12 stores a 12 bit value for cluster in fat.
func setFAT12(fat []byte, cluster int, value uint16) {
	pos := cluster + cluster/2
	if cluster&1 == 0 {
		fat[pos] = byte(value)
		fat[pos+1] = fat[pos+1]&0xF0 | byte(value>>8)&0x0F
	} else {
		fat[pos] = fat[pos]&0x0F | byte(value<<4)
		fat[pos+1] = byte(value >> 4)
	}
}

func setFAT16(fat []byte, cluster int, value uint16) {
	fat[cluster*2] = byte(value)
	fat[cluster*2+1] = byte(value >> 8)
}

// fat16BootSector describes a small FAT16 volume with 5000 clusters.
func fat16BootSector() fattest.BootSector {
	b := fattest.Floppy()
	b.RootDirEntries = 512
	b.SectorsPerFAT = 32
	b.TotalSectors = 1 + 2*32 + 32 + 5000
	b.Media = 0xF8
	copy(b.FSType[:], "FAT16   ")
	return b
}

// fatImage builds an image whose first FAT is filled by set.
func fatImage(t *testing.T, boot fattest.BootSector, set func(fat []byte)) (DiskInfo, *bytes.Reader) {
	t.Helper()

	image := fattest.Image(t, boot)
	fatStart := int(boot.BytesPerSector)
	set(image[fatStart : fatStart+int(boot.SectorsPerFAT)*int(boot.BytesPerSector)])

	info, err := ParseBootSector(image)
	if err != nil {
		t.Fatal(err)
	}
	return info, bytes.NewReader(image)
}

func TestNewFATReader(t *testing.T) {
	noData := fattest.Floppy()
	noData.TotalSectors = 20

	fat32 := fattest.Floppy()
	fat32.TotalSectors = 0
	fat32.TotalSectors32 = 2000000

	large := fat16BootSector()
	large.TotalSectors = 0
	large.TotalSectors32 = 1 + 2*32 + 32 + 5000

	zeroSectorSize := fattest.Floppy()
	zeroSectorSize.BytesPerSector = 0

	tests := []struct {
		name         string
		boot         fattest.BootSector
		wantType     FATType
		wantClusters uint32
		wantErr      error
	}{
		{name: "1.44 MB floppy", boot: fattest.Floppy(), wantType: FAT12, wantClusters: 2847},
		{name: "FAT16", boot: fat16BootSector(), wantType: FAT16, wantClusters: 5000},
		{name: "32 bit sector count", boot: large, wantType: FAT16, wantClusters: 5000},
		{name: "no data area", boot: noData, wantErr: ErrFormat},
		{name: "FAT32 sized", boot: fat32, wantErr: ErrFormat},
		{name: "zero sector size", boot: zeroSectorSize, wantErr: ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseBootSector(fattest.Pack(t, &tt.boot))
			if err != nil {
				t.Fatal(err)
			}

			got, err := NewFATReader(info, bytes.NewReader(nil))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewFATReader() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFATReader() error = %v", err)
			}
			if got.Type() != tt.wantType {
				t.Errorf("NewFATReader() type = %v, want %v", got.Type(), tt.wantType)
			}
			if got.Clusters() != tt.wantClusters {
				t.Errorf("NewFATReader() clusters = %v, want %v", got.Clusters(), tt.wantClusters)
			}
		})
	}
}

func TestChainIterator_FAT12(t *testing.T) {
	info, r := fatImage(t, fattest.Floppy(), func(fat []byte) {
		setFAT12(fat, 0, 0xFF0)
		setFAT12(fat, 1, 0xFFF)
		// 2 -> 3 -> 4 -> end
		setFAT12(fat, 2, 3)
		setFAT12(fat, 3, 4)
		setFAT12(fat, 4, 0xFFF)
		// 5 -> bad
		setFAT12(fat, 5, 0xFF7)
		// 6 -> 7 -> 6
		setFAT12(fat, 6, 7)
		setFAT12(fat, 7, 6)
		// 8 -> free
		setFAT12(fat, 8, 0)
		// 9 -> out of range
		setFAT12(fat, 9, 4000)
		// 10 -> 2847 -> end, 2848 is the last data cluster
		setFAT12(fat, 10, 2848)
		setFAT12(fat, 2848, 0xFF8)
		// 11 -> reserved value
		setFAT12(fat, 11, 0xFF0)
	})

	fat, err := NewFATReader(info, r)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		start   uint16
		want    []uint16
		wantErr error
	}{
		{name: "empty file", start: 0, want: nil},
		{name: "single chain", start: 2, want: []uint16{2, 3, 4}},
		{name: "starting in the middle", start: 4, want: []uint16{4}},
		{name: "last cluster", start: 10, want: []uint16{10, 2848}},
		{name: "bad cluster", start: 5, want: []uint16{5}, wantErr: ErrFormat},
		{name: "loop", start: 6, wantErr: ErrFormat},
		{name: "free cluster", start: 8, want: []uint16{8}, wantErr: ErrFormat},
		{name: "link out of range", start: 9, want: []uint16{9}, wantErr: ErrFormat},
		{name: "link to reserved value", start: 11, want: []uint16{11}, wantErr: ErrFormat},
		{name: "reserved start cluster", start: 1, wantErr: ErrFormat},
		{name: "start out of range", start: 2849, wantErr: ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fat.Chain(tt.start).Collect()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Collect() error = %v, want %v", err, tt.wantErr)
			}
			// The loop case yields clusters until the limit is hit, only compare finite chains.
			if tt.name != "loop" {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestChainIterator_FAT16(t *testing.T) {
	info, r := fatImage(t, fat16BootSector(), func(fat []byte) {
		setFAT16(fat, 2, 0x1000)
		setFAT16(fat, 0x1000, 3)
		setFAT16(fat, 3, 0xFFFF)
		setFAT16(fat, 4, 0xFFF7)
	})

	fat, err := NewFATReader(info, r)
	if err != nil {
		t.Fatal(err)
	}

	got, err := fat.Chain(2).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if diff := cmp.Diff([]uint16{2, 0x1000, 3}, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}

	if _, err := fat.Chain(4).Collect(); !errors.Is(err, ErrFormat) {
		t.Errorf("Collect() of a bad cluster error = %v, want ErrFormat", err)
	}
}

func TestChainIterator_Reset(t *testing.T) {
	info, r := fatImage(t, fattest.Floppy(), func(fat []byte) {
		setFAT12(fat, 2, 3)
		setFAT12(fat, 3, 0xFFF)
		setFAT12(fat, 4, 0)
	})

	fat, err := NewFATReader(info, r)
	if err != nil {
		t.Fatal(err)
	}

	it := fat.Chain(2)
	first, err := it.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if it.Next() {
		t.Errorf("Next() after the end = true")
	}

	it.Reset()
	second, err := it.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("chain differs after Reset() (-first +second):\n%s", diff)
	}

	broken := fat.Chain(4)
	if _, err := broken.Collect(); !errors.Is(err, ErrFormat) {
		t.Fatalf("Collect() error = %v, want ErrFormat", err)
	}
	broken.Reset()
	if broken.Err() != nil {
		t.Errorf("Err() after Reset() = %v, want nil", broken.Err())
	}
	if !broken.Next() || broken.Cluster() != 4 {
		t.Errorf("Next() after Reset() does not restart at cluster 4")
	}
}

func TestChainIterator_ReadError(t *testing.T) {
	image := fattest.Image(t, fattest.Floppy())
	info, err := ParseBootSector(image)
	if err != nil {
		t.Fatal(err)
	}

	// The FAT itself is cut off.
	fat, err := NewFATReader(info, bytes.NewReader(image[:600]))
	if err != nil {
		t.Fatal(err)
	}

	it := fat.Chain(100)
	if !it.Next() {
		t.Fatalf("Next() = false for a valid start cluster, error = %v", it.Err())
	}
	if it.Next() {
		t.Errorf("Next() = true beyond the end of the image")
	}
	if !errors.Is(it.Err(), ErrIO) || !errors.Is(it.Err(), io.ErrUnexpectedEOF) {
		t.Errorf("Err() = %v, want ErrIO wrapping io.ErrUnexpectedEOF", it.Err())
	}
}
