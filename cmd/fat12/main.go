// Command fat12 prints the boot sector and root directory of FAT12/16 disk images.
//
//	fat12 info <image>
//	fat12 list <image>
//	fat12 chain <image> <cluster>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aligator/fat12"
	"github.com/spf13/afero"
)

// Exit statuses of a failed command.
const (
	exitFailure          = 1
	exitIO               = 2
	exitFormat           = 3
	exitInvalidTimestamp = 4
)

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

// run executes the command line args against fs and returns the exit status.
func run(args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	root := newRootCommand(fs, stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "fat12: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, fat12.ErrIO):
		return exitIO
	case errors.Is(err, fat12.ErrFormat):
		return exitFormat
	case errors.Is(err, fat12.ErrInvalidTimestamp):
		return exitInvalidTimestamp
	default:
		return exitFailure
	}
}
