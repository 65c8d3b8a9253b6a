package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNilInput indicates Resolve was called with nothing to read.
	ErrNilInput = errors.New("nil input")

	// ErrUnsupportedInput indicates an input type Resolve does not understand.
	ErrUnsupportedInput = errors.New("unsupported input type")

	// ErrDirectory indicates a Path naming a directory.
	ErrDirectory = errors.New("path is a directory")

	// ErrTooLarge indicates input larger than MaxSize.
	ErrTooLarge = errors.New("input exceeds maximum size")
)

// UnresolvableSourceError indicates an input that could not be turned into
// a StreamSource.
type UnresolvableSourceError struct {
	// Input describes the offending input (a path, file name or Go type).
	Input string
	Cause error
}

// Error returns the error message.
func (e *UnresolvableSourceError) Error() string {
	return fmt.Sprintf("cannot resolve source %s: %v", e.Input, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *UnresolvableSourceError) Unwrap() error {
	return e.Cause
}
