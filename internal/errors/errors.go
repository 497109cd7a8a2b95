// Package errors provides a lightweight structured error type (SiteNavError)
// for category-based classification in the CLI and build pipeline.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a sitenav error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Content and navigation errors
	CategoryContent    ErrorCategory = "content"
	CategoryNavigation ErrorCategory = "navigation"

	// Build and output errors
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// External system errors
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// SiteNavError is a structured error with category, severity, and context
type SiteNavError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SiteNavError
type ContextFields map[string]any

// Error implements the error interface
func (e *SiteNavError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SiteNavError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SiteNavError) WithContext(key string, value any) *SiteNavError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the severity of the error
func (e *SiteNavError) WithSeverity(severity ErrorSeverity) *SiteNavError {
	e.Severity = severity
	return e
}

// New creates a new SiteNavError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SiteNavError {
	return &SiteNavError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new SiteNavError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SiteNavError {
	return &SiteNavError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapError wraps an existing error with default error severity
func WrapError(err error, category ErrorCategory, message string) *SiteNavError {
	return &SiteNavError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// ValidationError creates a new validation error
func ValidationError(message string) *SiteNavError {
	return &SiteNavError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if sne, ok := err.(*SiteNavError); ok {
		return sne.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SiteNavError
func GetCategory(err error) ErrorCategory {
	if sne, ok := err.(*SiteNavError); ok {
		return sne.Category
	}
	return CategoryInternal
}
