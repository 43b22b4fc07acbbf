// Package clierr provides the coded error type the command-line tools report failures with.
package clierr

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUsage    = "USAGE"
	CodeNotFound = "NOT_FOUND"
	CodeParse    = "PARSE"
	CodeIO       = "IO"
	CodeInvalid  = "INVALID"
)

// Error is a failure with a code and a user-facing message.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps err with a code and message.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Usage creates a usage error. The message is printed as-is.
func Usage(message string) *Error {
	return New(CodeUsage, message)
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// ExitCode maps err to a process exit status. Every failure class exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Message returns the text to print on stderr for err, without the code prefix.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// IsUsage checks if err is a usage error.
func IsUsage(err error) bool {
	return hasCode(err, CodeUsage)
}

// IsNotFound checks if err is a not found error.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsParse checks if err is a parse error.
func IsParse(err error) bool {
	return hasCode(err, CodeParse)
}

// IsIO checks if err is an I/O error.
func IsIO(err error) bool {
	return hasCode(err, CodeIO)
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
