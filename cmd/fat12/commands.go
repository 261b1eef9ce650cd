package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aligator/fat12"
	"github.com/aligator/fat12/source"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// bootSectorSignature is expected in the last two bytes of a boot sector.
const bootSectorSignature = 0xAA55

// app carries what the commands share.
type app struct {
	fs     afero.Fs
	cfg    config
	logger log.Logger
}

// newRootCommand builds the command tree. Images are opened from fs, results are written to stdout
// and logs to stderr.
func newRootCommand(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		fs:     fs,
		logger: log.NewNopLogger(),
	}

	root := &cobra.Command{
		Use:   "fat12 command <image>",
		Short: "Inspect the boot sector and root directory of FAT12/16 disk images",
		// Unknown commands end up here instead of failing.
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(stderr, a.cfg.verbose)
			return a.cfg.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return cmd.Usage()
			}
			level.Debug(a.logger).Log("msg", "ignoring unknown command", "command", args[0])
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	a.cfg.addFlags(root.PersistentFlags())

	root.AddCommand(
		a.infoCommand(),
		a.listCommand(),
		a.chainCommand(),
	)
	return root
}

// open opens the image at path and reads its boot sector.
func (a *app) open(path string) (*source.Image, fat12.DiskInfo, error) {
	img, err := source.Open(a.fs, path, a.cfg.sourceOptions())
	if err != nil {
		return nil, fat12.DiskInfo{}, err
	}
	level.Debug(a.logger).Log("msg", "opened image", "path", img.Name(), "compression", img.Compression())

	info, err := fat12.ReadDiskInfo(img)
	if err != nil {
		img.Close()
		return nil, fat12.DiskInfo{}, err
	}
	if info.Signature != bootSectorSignature {
		level.Warn(a.logger).Log("msg", "boot sector signature missing", "path", img.Name(), "signature", fmt.Sprintf("0x%04X", info.Signature))
	}

	return img, info, nil
}

func (a *app) infoCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Print the OS name and the sector size of an image",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return cmd.Usage()
			}

			img, info, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, string(info.OSName[:]))
			fmt.Fprintf(out, "0x%X\n", info.BytesPerSector)
			if all {
				printDiskInfo(out, info)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every boot sector field")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <image>",
		Short: "List the files in the root directory of an image",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return cmd.Usage()
			}

			isDir, err := a.cfg.directoryTest()
			if err != nil {
				return err
			}

			img, info, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			out := cmd.OutOrStdout()
			scanner := &fat12.Scanner{
				IsDirectory: isDir,
				Logger:      a.logger,
			}
			return scanner.Scan(info, img, func(l fat12.Listing) error {
				_, err := fmt.Fprintln(out, l.String())
				return err
			})
		},
	}
}

func (a *app) chainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chain <image> <cluster>",
		Short: "Print the clusters of the FAT chain starting at cluster",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return cmd.Usage()
			}

			start, err := strconv.ParseUint(args[1], 0, 16)
			if err != nil {
				return fmt.Errorf("invalid cluster %q: %w", args[1], err)
			}

			img, info, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			fat, err := fat12.NewFATReader(info, img)
			if err != nil {
				return err
			}
			level.Debug(a.logger).Log("msg", "reading chain", "type", fat.Type(), "clusters", fat.Clusters(), "start", start)

			it := fat.Chain(uint16(start))
			var clusters []string
			for it.Next() {
				clusters = append(clusters, strconv.Itoa(int(it.Cluster())))
			}
			if len(clusters) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(clusters, " "))
			}
			return it.Err()
		},
	}
}

func printDiskInfo(w io.Writer, info fat12.DiskInfo) {
	fields := []struct {
		name  string
		value interface{}
	}{
		{"JumpBoot", fmt.Sprintf("% X", info.JumpBoot[:])},
		{"OSName", strings.TrimRight(string(info.OSName[:]), " \x00")},
		{"BytesPerSector", info.BytesPerSector},
		{"SectorsPerCluster", info.SectorsPerCluster},
		{"ReservedSectors", info.ReservedSectors},
		{"FATs", info.FATs},
		{"RootDirEntries", info.RootDirEntries},
		{"TotalSectors", info.TotalSectors},
		{"Media", fmt.Sprintf("0x%02X", info.Media)},
		{"SectorsPerFAT", info.SectorsPerFAT},
		{"SectorsPerTrack", info.SectorsPerTrack},
		{"Heads", info.Heads},
		{"HiddenSectors", info.HiddenSectors},
		{"TotalSectors32", info.TotalSectors32},
		{"DriveNumber", fmt.Sprintf("0x%02X", info.DriveNumber)},
		{"BootSignature", fmt.Sprintf("0x%02X", info.BootSignature)},
		{"VolumeID", fmt.Sprintf("0x%08X", info.VolumeID)},
		{"VolumeLabel", info.Label()},
		{"FSType", info.FileSystemType()},
		{"Signature", fmt.Sprintf("0x%04X", info.Signature)},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s: %v\n", f.name, f.value)
	}
}
