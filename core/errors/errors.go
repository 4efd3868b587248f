// Package errors provides the error taxonomy shared by the redline packages.
//
// Structural failures (ArchiveError, ParseError) are fatal to the pipeline
// that hit them. TranslationError is node-local and always absorbed by the
// caller. Every typed error matches its sentinel with errors.Is even when it
// also wraps an underlying cause.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrArchiveUnreadable indicates the container could not be read as a zip archive
	ErrArchiveUnreadable = errors.New("archive unreadable")
	// ErrMalformedMarkup indicates the content part is not well-formed XML
	ErrMalformedMarkup = errors.New("malformed markup")
	// ErrTranslationUnavailable indicates a single translation call failed
	ErrTranslationUnavailable = errors.New("translation unavailable")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// ArchiveError reports a container that could not be opened or read.
type ArchiveError struct {
	Path    string // Archive path, empty for in-memory archives
	Message string
	Err     error
}

func (e *ArchiveError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("archive %s unreadable: %s", e.Path, msg)
	}
	return fmt.Sprintf("archive unreadable: %s", msg)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

func (e *ArchiveError) Is(target error) bool { return target == ErrArchiveUnreadable }

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "XML", "YAML")
	Path    string // Part or file path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrMalformedMarkup for XML failures and ErrInvalidInput otherwise.
func (e *ParseError) Is(target error) bool {
	if e.Format == "XML" {
		return target == ErrMalformedMarkup
	}
	return target == ErrInvalidInput
}

// TranslationError is returned by a translator for one failed call.
type TranslationError struct {
	Provider string
	Text     string // Source text, possibly truncated
	Err      error
}

func (e *TranslationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s translation of %q failed: %v", e.Provider, e.Text, e.Err)
	}
	return fmt.Sprintf("%s translation of %q failed", e.Provider, e.Text)
}

func (e *TranslationError) Unwrap() error { return e.Err }

func (e *TranslationError) Is(target error) bool { return target == ErrTranslationUnavailable }

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "part")
	ID       string // Identifier of the resource
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewArchive creates an ArchiveError
func NewArchive(path, message string, err error) *ArchiveError {
	return &ArchiveError{Path: path, Message: message, Err: err}
}

// NewMarkup creates a ParseError for malformed XML in the named part.
func NewMarkup(part string, err error) *ParseError {
	msg := "invalid XML"
	if err != nil {
		msg = err.Error()
	}
	return &ParseError{Format: "XML", Path: part, Message: msg, Err: err}
}

// NewParse creates a ParseError
func NewParse(format, path, message string, err error) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message, Err: err}
}

// NewTranslation creates a TranslationError. Long source text is truncated.
func NewTranslation(provider, text string, err error) *TranslationError {
	if r := []rune(text); len(r) > 40 {
		text = string(r[:40]) + "..."
	}
	return &TranslationError{Provider: provider, Text: text, Err: err}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
