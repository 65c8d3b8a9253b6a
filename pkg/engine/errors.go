package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrInvalidLicense indicates a license source that could not be accepted.
	ErrInvalidLicense = errors.New("invalid license")

	// ErrInvalidConfigSource indicates a configuration source the engine rejected.
	ErrInvalidConfigSource = errors.New("invalid configuration source")
)

// UnknownFeatureError indicates a key outside the engine's feature registry.
type UnknownFeatureError struct {
	Key string
}

// Error returns the error message.
func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown feature %q", e.Key)
}

// TypeMismatchError indicates a value that cannot be stored for a feature.
type TypeMismatchError struct {
	Key      string
	Expected Kind
	Value    Value
}

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	if e.Value.kind == e.Expected {
		return fmt.Sprintf("feature %q does not accept value %q", e.Key, e.Value.String())
	}
	return fmt.Sprintf("feature %q expects %s, got %s %q", e.Key, e.Expected, e.Value.kind, e.Value.String())
}

// UnsupportedValueError indicates a Go value with no Value representation.
type UnsupportedValueError struct {
	Value any
}

// Error returns the error message.
func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported configuration value type %T", e.Value)
}

// ConfigSourceError indicates the configuration source passed to New was rejected.
type ConfigSourceError struct {
	SystemID string
	Cause    error
}

// Error returns the error message.
func (e *ConfigSourceError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrInvalidConfigSource, e.SystemID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConfigSourceError) Unwrap() []error {
	return []error{ErrInvalidConfigSource, e.Cause}
}
