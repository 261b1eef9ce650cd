// Package checkpoint decorates errors with the file and line they passed through,
// which results in a short trail from a failing read back to the caller that asked for it.
// The kind added by Wrap and the underlying cause can both be checked by errors.Is and retrieved by errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// From adds a checkpoint with caller information to err.
// It returns nil, if err == nil.
func From(err error) error {
	if err == nil {
		return nil
	}

	return newCheckpoint(nil, err, "")
}

// Wrap adds a checkpoint to cause which is additionally classified by kind.
// Returns nil if cause == nil.
// This allows predefined error kinds to be attached to whatever went wrong underneath:
//
//	var ErrIO = errors.New("i/o error")
//
//	func readSector(r io.Reader, buf []byte) error {
//		_, err := io.ReadFull(r, buf)
//		return checkpoint.Wrap(err, ErrIO)
//	}
//
// The result matches errors.Is(err, ErrIO) as well as errors.Is(err, io.ErrUnexpectedEOF).
func Wrap(cause, kind error) error {
	if cause == nil {
		return nil
	}

	return newCheckpoint(kind, cause, "")
}

// Wrapf is like Wrap but also records a formatted detail message.
func Wrapf(cause, kind error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}

	return newCheckpoint(kind, cause, fmt.Sprintf(format, args...))
}

// New creates a checkpoint of the given kind without an underlying cause.
func New(kind error, format string, args ...interface{}) error {
	return newCheckpoint(kind, nil, fmt.Sprintf(format, args...))
}

func newCheckpoint(kind, cause error, detail string) *checkpoint {
	// Skip newCheckpoint and the exported constructor.
	_, file, line, ok := runtime.Caller(2)

	return &checkpoint{
		kind:   kind,
		cause:  cause,
		detail: detail,

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type checkpoint struct {
	kind   error
	cause  error
	detail string

	callerOk bool
	file     string
	line     int
}

func (e *checkpoint) Error() string {
	var parts []string
	if e.kind != nil {
		parts = append(parts, e.kind.Error())
	}
	if e.detail != "" {
		parts = append(parts, e.detail)
	}

	location := "unknown"
	if e.callerOk {
		location = fmt.Sprintf("%s:%d", e.file, e.line)
	}

	msg := strings.Join(parts, ": ")
	if msg == "" {
		msg = "checkpoint"
	}
	msg += " (" + location + ")"

	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *checkpoint) Unwrap() error {
	return e.cause
}

func (e *checkpoint) Is(target error) bool {
	return e.kind != nil && errors.Is(e.kind, target)
}

func (e *checkpoint) As(target interface{}) bool {
	return e.kind != nil && errors.As(e.kind, target)
}
