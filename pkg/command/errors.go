package command

import (
	"errors"
	"fmt"
)

// Exit codes for scripting integration.
// These codes let wrapping scripts distinguish between failure modes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates the command failed during execution.
	ExitFailure = 1

	// ExitConfigError indicates a configuration or argument validation error.
	// The command could not proceed because its inputs were invalid.
	ExitConfigError = 3
)

// Error represents a command termination with a specific exit code.
//
// Use this error when a command needs to exit with a non-zero status
// while providing context about what went wrong.
//
// Fields:
//   - Code: Exit code (use constants ExitSuccess, ExitFailure, ExitConfigError)
//   - Message: Human-readable error message
//   - Err: Underlying error that caused this exit, may be nil
//
// Example:
//
//	return &command.Error{
//	    Code:    command.ExitConfigError,
//	    Message: "missing required flag --project",
//	}
type Error struct {
	// Code is the exit code for the command.
	// Standard codes: 0=success, 1=failure, 3=config error.
	Code int

	// Message is a human-readable description of why the command failed.
	Message string

	// Err is the underlying error that caused this exit.
	// May be nil if no underlying error exists.
	Err error
}

// Error implements the error interface.
//
// Returns the Message field if set, otherwise returns the underlying error's
// message, or a default message with the exit code.
//
// Returns:
//   - string: The error message
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the underlying error for errors.Is/As support.
//
// Returns:
//   - error: The underlying error, or nil if none exists
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code and underlying error.
//
// Parameters:
//   - code: Exit code (use ExitSuccess, ExitFailure, ExitConfigError)
//   - err: Underlying error, may be nil
//
// Returns:
//   - *Error: New command error
func NewError(code int, err error) *Error {
	return &Error{Code: code, Err: err}
}

// NewErrorf creates an Error with the given code and formatted message.
//
// Parameters:
//   - code: Exit code
//   - format: Printf-style format string
//   - args: Format arguments
//
// Returns:
//   - *Error: New command error with formatted message
//
// Example:
//
//	err := command.NewErrorf(command.ExitFailure, "failed to open %s", path)
func NewErrorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error.
//
// If err is nil, returns ExitSuccess.
// If err is (or wraps) a command Error, returns its code.
// Otherwise returns ExitFailure.
//
// Parameters:
//   - err: The error to extract the code from
//
// Returns:
//   - int: Exit code suitable for os.Exit
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ExitFailure
}
