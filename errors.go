package fat12

import "errors"

// These errors classify every failure of this package.
// They are attached using checkpoint.Wrap, so errors.Is matches the kind and the underlying cause.
var (
	// ErrIO is returned if the image could not be opened, read or seeked, e.g. because it is truncated.
	ErrIO = errors.New("i/o error")
	// ErrFormat is returned if a buffer is too short for the record decoded from it
	// or if on-disk structures contradict each other.
	ErrFormat = errors.New("format error")
	// ErrInvalidTimestamp is returned if a packed date and time do not name a real calendar moment.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
