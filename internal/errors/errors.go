// Package errors provides a lightweight structured error type (TexBuilderError)
// for category-based classification and exit-code mapping in the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a texbuilder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Missing or unreachable external dependencies (container runtime, binaries)
	CategoryDependency ErrorCategory = "dependency"

	// External tool and check failures
	CategoryToolchain ErrorCategory = "toolchain"
	CategoryCheck     ErrorCategory = "check"

	// Local processing errors
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime errors
	CategoryInterrupted ErrorCategory = "interrupted"
	CategoryInternal    ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// TexBuilderError is a structured error with category, severity and context.
// ExitCode is only meaningful for CategoryToolchain, where it carries the
// external tool's exit status verbatim.
type TexBuilderError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	ExitCode int           `json:"exit_code,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TexBuilderError
type ContextFields map[string]any

// Error implements the error interface
func (e *TexBuilderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TexBuilderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TexBuilderError) WithContext(key string, value any) *TexBuilderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TexBuilderError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TexBuilderError {
	return &TexBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TexBuilderError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TexBuilderError {
	return &TexBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As extracts a *TexBuilderError from err's chain.
func As(err error) (*TexBuilderError, bool) {
	var tbe *TexBuilderError
	if stderrors.As(err, &tbe) {
		return tbe, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if tbe, ok := As(err); ok {
		return tbe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TexBuilderError
func GetCategory(err error) ErrorCategory {
	if tbe, ok := As(err); ok {
		return tbe.Category
	}
	return CategoryInternal
}
