package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a failure so callers can decide between skipping a
// profile and aborting the run without inspecting messages.
type ErrorCode string

const (
	ErrCopy          ErrorCode = "COPY"           // snapshot could not be created; skip profile
	ErrLocked        ErrorCode = "LOCKED"         // database locked by another writer; retryable
	ErrQuery         ErrorCode = "QUERY"          // any other database-engine failure; skip profile
	ErrTermination   ErrorCode = "TERMINATION"    // a browser process could not be terminated
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG" // configuration rejected before the run starts
	ErrNoRoots       ErrorCode = "NO_ROOTS"       // no filesystem root to probe; fatal
)

// ScanError is a structured error with a code, the path it concerns and the
// underlying cause.
type ScanError struct {
	Code    ErrorCode
	Message string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// NewCopy creates an error for a snapshot that could not be taken.
func NewCopy(path string, err error) *ScanError {
	return &ScanError{
		Code:    ErrCopy,
		Message: "copy history database",
		Path:    path,
		Err:     err,
	}
}

// NewLocked creates an error for a database held locked by another process.
func NewLocked(path string, err error) *ScanError {
	return &ScanError{
		Code:    ErrLocked,
		Message: "database is locked",
		Path:    path,
		Err:     err,
	}
}

// NewQuery creates an error for a non-retryable database failure.
func NewQuery(path string, err error) *ScanError {
	return &ScanError{
		Code:    ErrQuery,
		Message: "query history database",
		Path:    path,
		Err:     err,
	}
}

// NewTermination creates an error for a process that could not be terminated.
func NewTermination(process string, pid int32, err error) *ScanError {
	return &ScanError{
		Code:    ErrTermination,
		Message: fmt.Sprintf("terminate %s (pid %d)", process, pid),
		Err:     err,
	}
}

// NewInvalidConfig creates an error for a rejected configuration value.
func NewInvalidConfig(msg string) *ScanError {
	return &ScanError{
		Code:    ErrInvalidConfig,
		Message: msg,
	}
}

// NewNoRoots creates the fatal error raised when there is nothing to probe.
func NewNoRoots() *ScanError {
	return &ScanError{
		Code:    ErrNoRoots,
		Message: "no filesystem roots available to search for browser profiles",
	}
}

// Is reports whether err, or anything it wraps, is a ScanError with code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first ScanError in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var sErr *ScanError
	if stderrors.As(err, &sErr) {
		return sErr.Code
	}
	return ""
}
