package edxml

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := cleaner.Clean(ctx, config)
//	if errors.Is(err, edxml.ErrApprovalDenied) {
//	    // Nothing was written
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRootNotFound indicates the root course document was not found.
	ErrRootNotFound = errors.New("root document not found")

	// ErrMissingFragment indicates a fragment passed the existence check
	// but could no longer be read.
	ErrMissingFragment = errors.New("missing fragment")

	// ErrParse indicates a root document or fragment is not well-formed XML.
	ErrParse = errors.New("parse error")

	// ErrApprovalDenied indicates the user denied approval for the commit.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrCommitFailed indicates a file-system mutation failed while
	// applying the change set.
	ErrCommitFailed = errors.New("commit failed")

	// ErrInvalidXPath indicates an extraction selector did not compile.
	ErrInvalidXPath = errors.New("invalid xpath")
)

// ParseError reports a malformed XML document with its location.
type ParseError struct {
	Path string // File that failed to parse
	Line int    // Line number (0 if unknown)
	Err  error  // Underlying decoder error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the decoder error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidXPath):
		return ExitConfigError
	case errors.Is(err, ErrRootNotFound):
		return ExitRootMissing
	case errors.Is(err, ErrParse), errors.Is(err, ErrMissingFragment):
		return ExitStructuralError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrCommitFailed):
		return ExitCommitFailed
	}

	// cobra reports usage problems as plain errors
	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"missing required argument",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}
