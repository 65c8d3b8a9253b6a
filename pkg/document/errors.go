package document

import (
	"fmt"
	"strings"
)

// ParseError indicates a source that could not be parsed into a document.
type ParseError struct {
	SystemID string
	Line     int
	Column   int
	Message  string
	Cause    error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("parse error")
	if e.SystemID != "" {
		fmt.Fprintf(&sb, " in %s", e.SystemID)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&sb, ", column %d", e.Column)
		}
	}
	fmt.Fprintf(&sb, ": %s", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
