package main

import (
	"fmt"
	"io"

	"github.com/aligator/fat12"
	"github.com/aligator/fat12/source"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/pflag"
)

const (
	dirTestLiteral = "literal"
	dirTestSubDir  = "subdir"
)

// config holds the global flags.
type config struct {
	dirTest      string
	maxImageSize int64
	verbose      bool
}

func (c *config) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.dirTest, "dir-test", dirTestLiteral,
		fmt.Sprintf("how directories are recognized in listings: %q or %q", dirTestLiteral, dirTestSubDir))
	flags.Int64Var(&c.maxImageSize, "max-image-size", source.DefaultMaxSize,
		"maximum inflated size in bytes of a compressed image")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")
}

func (c *config) validate() error {
	if _, err := c.directoryTest(); err != nil {
		return err
	}
	if c.maxImageSize <= 0 {
		return fmt.Errorf("--max-image-size must be positive, got %d", c.maxImageSize)
	}
	return nil
}

func (c *config) directoryTest() (fat12.DirectoryTest, error) {
	switch c.dirTest {
	case dirTestLiteral:
		return fat12.LiteralDirectoryTest, nil
	case dirTestSubDir:
		return fat12.SubDirFlagTest, nil
	default:
		return nil, fmt.Errorf("unknown --dir-test %q, use %q or %q", c.dirTest, dirTestLiteral, dirTestSubDir)
	}
}

func (c *config) sourceOptions() source.Options {
	return source.Options{MaxSize: c.maxImageSize}
}

// newLogger writes logfmt lines to w. Debug lines are only let through if verbose is set.
func newLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	allow := level.AllowInfo()
	if verbose {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}
