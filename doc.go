// Package fat12 reads the boot sector and the root directory of FAT12 and FAT16 disk images.
//
// It never writes and never follows cluster chains to read file contents.
// FATReader only resolves the cluster indices of a chain, so content retrieval
// can be layered on top without touching the parsers or the Scanner.
package fat12
