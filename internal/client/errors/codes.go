package errors

import (
	stderrors "errors"
	"fmt"
	"io"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0 // Success
	ExitGeneralError     = 1 // General error (storage failure, unknown error)
	ExitInvalidArguments = 2 // Invalid arguments/usage (bad flags, invalid configuration)
	ExitNotFound         = 3 // Requested credential is not stored
	ExitAuthError        = 5 // Not logged in
)

// ExitError carries the process exit code for a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WithCode wraps err so that the command exits with code
func WithCode(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// Newf creates an ExitError with a formatted message
func Newf(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// Wrap adds context to err and marks it as a general error
func Wrap(err error, message string) error {
	return &ExitError{Code: ExitGeneralError, Err: fmt.Errorf("%s: %w", message, err)}
}

// Silent returns an ExitError that exits with code without printing anything
func Silent(code int) error {
	return &ExitError{Code: code}
}

// Report prints err to w and returns the exit code it maps to
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !stderrors.As(err, &exitErr) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return ExitGeneralError
	}

	if exitErr.Err != nil {
		fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
	}
	return exitErr.Code
}
