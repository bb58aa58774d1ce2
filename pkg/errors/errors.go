// Package errors provides structured error types for stickerpack.
//
// Every failure the pipeline reports carries a [Code]. Codes split into two
// groups:
//   - Fatal codes stop a run: a missing input or baseline collection, or a
//     template that cannot be opened or has no layers.
//   - Per-document codes are recorded against one document and the run
//     continues with the next one.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTemplateEmpty, "template %s has no layers", path)
//	if errors.IsFatal(err) {
//	    return err
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMerge, cause, "merge %s into %s", group, doc)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Fatal: nothing can proceed
	ErrCodeSourceCollection Code = "SOURCE_COLLECTION"
	ErrCodeTemplateOpen     Code = "TEMPLATE_OPEN"
	ErrCodeTemplateEmpty    Code = "TEMPLATE_EMPTY"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Per document
	ErrCodeMerge            Code = "MERGE"
	ErrCodeUnreadableMember Code = "UNREADABLE_MEMBER"
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"
	ErrCodeResize           Code = "RESIZE"
	ErrCodeExport           Code = "EXPORT"
	ErrCodeRelabel          Code = "RELABEL"

	// Warnings
	ErrCodeRelabelSkipped Code = "RELABEL_SKIPPED"
	ErrCodeAlreadyMerged  Code = "ALREADY_MERGED"

	// Engine misuse and internal errors
	ErrCodeNotActive   Code = "NOT_ACTIVE"
	ErrCodeNotOpen     Code = "NOT_OPEN"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// fatalCodes are the codes that abort a pipeline run.
var fatalCodes = map[Code]bool{
	ErrCodeSourceCollection: true,
	ErrCodeTemplateOpen:     true,
	ErrCodeTemplateEmpty:    true,
	ErrCodeInvalidConfig:    true,
}

// warningCodes are recorded but do not fail a run.
var warningCodes = map[Code]bool{
	ErrCodeRelabelSkipped: true,
	ErrCodeAlreadyMerged:  true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether err should abort a pipeline run.
func IsFatal(err error) bool {
	return fatalCodes[GetCode(err)]
}

// IsWarning reports whether err is informational only.
func IsWarning(err error) bool {
	return warningCodes[GetCode(err)]
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
