package processor

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrEmptyConfig indicates SetConfig was called with nothing to set.
	ErrEmptyConfig = errors.New("configuration mapping is empty")

	// ErrForeignArtifact indicates an artifact produced by a different processor.
	ErrForeignArtifact = errors.New("artifact belongs to a different processor")
)

// InitializationError indicates a processor could not be created because its
// sources could not be resolved or the engine rejected them. Cause carries the
// original diagnostic.
type InitializationError struct {
	Cause error
}

// Error returns the error message.
func (e *InitializationError) Error() string {
	return fmt.Sprintf("engine initialization failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InitializationError) Unwrap() error {
	return e.Cause
}

// InvalidArgumentError indicates a caller mistake detected before any engine
// call was made.
type InvalidArgumentError struct {
	// Name identifies the offending argument or configuration entry.
	Name  string
	Cause error
}

// Error returns the error message.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InvalidArgumentError) Unwrap() error {
	return e.Cause
}
