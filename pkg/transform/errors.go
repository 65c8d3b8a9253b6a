package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Common sentinel errors
var (
	// ErrNilDocument indicates Apply was called without a document.
	ErrNilDocument = errors.New("document cannot be nil")
)

// Problem is a single compilation diagnostic.
type Problem struct {
	Line    int
	Column  int
	Message string
}

// String formats the problem with its location.
func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", p.Line, p.Column, p.Message)
	}
	return p.Message
}

// CompilationError collects every problem found while compiling a program.
type CompilationError struct {
	SystemID string
	Problems []Problem
	Cause    error
}

// Error returns the error message.
func (e *CompilationError) Error() string {
	var sb strings.Builder
	sb.WriteString("compilation failed")
	if e.SystemID != "" {
		fmt.Fprintf(&sb, " for %s", e.SystemID)
	}
	switch len(e.Problems) {
	case 0:
		if e.Cause != nil {
			fmt.Fprintf(&sb, ": %v", e.Cause)
		}
	case 1:
		fmt.Fprintf(&sb, ": %s", e.Problems[0])
	default:
		fmt.Fprintf(&sb, ": %d problems", len(e.Problems))
		for _, p := range e.Problems {
			fmt.Fprintf(&sb, "\n  %s", p)
		}
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// IncompatibleEngineError indicates an attempt to combine artifacts bound
// to different engines.
type IncompatibleEngineError struct {
	ProgramEngine  uuid.UUID
	DocumentEngine uuid.UUID
}

// Error returns the error message.
func (e *IncompatibleEngineError) Error() string {
	return fmt.Sprintf("program bound to engine %s cannot be applied to document bound to engine %s",
		e.ProgramEngine, e.DocumentEngine)
}

// ApplyError indicates a rule that could not be applied to a document.
type ApplyError struct {
	Program string
	Rule    int // 1-based rule index
	Line    int
	Op      Op
	Message string
}

// Error returns the error message.
func (e *ApplyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("program %s rule %d (%s, line %d): %s", e.Program, e.Rule, e.Op, e.Line, e.Message)
	}
	return fmt.Sprintf("program %s rule %d (%s): %s", e.Program, e.Rule, e.Op, e.Message)
}
