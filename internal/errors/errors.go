// Package errors provides a lightweight structured error type (SiteBuilderError)
// for category-based classification and retry semantics across the publish
// pipeline, the site builder, and the autopost engine.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a pipeline error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// Persistence and filesystem errors
	CategoryStore      ErrorCategory = "store"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Pipeline errors
	CategoryRender   ErrorCategory = "render"
	CategoryPublish  ErrorCategory = "publish"
	CategoryAutopost ErrorCategory = "autopost"

	// Runtime and infrastructure errors
	CategoryNetwork  ErrorCategory = "network"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// SiteBuilderError is a structured error with category, retryability, and context.
type SiteBuilderError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SiteBuilderError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *SiteBuilderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *SiteBuilderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *SiteBuilderError) WithContext(key string, value any) *SiteBuilderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SiteBuilderError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *SiteBuilderError {
	return &SiteBuilderError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new SiteBuilderError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SiteBuilderError {
	return &SiteBuilderError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable SiteBuilderError that wraps an existing error.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *SiteBuilderError {
	e := Wrap(err, category, severity, message)
	e.Retryable = true
	return e
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	var sbe *SiteBuilderError
	if errors.As(err, &sbe) {
		return sbe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var sbe *SiteBuilderError
	if errors.As(err, &sbe) {
		return sbe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if it is not a SiteBuilderError.
func GetCategory(err error) ErrorCategory {
	var sbe *SiteBuilderError
	if errors.As(err, &sbe) {
		return sbe.Category
	}
	return CategoryInternal
}
