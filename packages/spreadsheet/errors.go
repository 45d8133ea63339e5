package spreadsheet

import (
	"errors"
	"fmt"
)

// ErrorMarker is the single user-visible error value. every evaluation
// failure displays as this string.
const ErrorMarker = "Fehler"

// AppErrorCode represents gRPC-style error codes for application-level
// errors. codes that make no sense for an in-memory grid are skipped.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// InvalidArgument indicates the caller specified an invalid argument,
	// like a malformed cell key.
	InvalidArgument AppErrorCode = 3

	// NotFound means some requested cell was not found.
	NotFound AppErrorCode = 5

	// FailedPrecondition indicates the grid is not in a state required for
	// the operation, e.g. formulas that reference each other in a cycle.
	FailedPrecondition AppErrorCode = 9

	// OutOfRange means an address was computed past the A-Z columns or
	// before row 1.
	OutOfRange AppErrorCode = 11
)

func (c AppErrorCode) String() string {
	switch c {
	case OK:
		return "OK"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case NotFound:
		return "NOT_FOUND"
	case FailedPrecondition:
		return "FAILED_PRECONDITION"
	case OutOfRange:
		return "OUT_OF_RANGE"
	default:
		return fmt.Sprintf("CODE(%d)", int(c))
	}
}

// AppError represents errors at the application level (not formula
// evaluation errors, which collapse to ErrorMarker)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is an *AppError with the same code, so callers
// can match against the Err* sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func newApplicationErrorf(code AppErrorCode, format string, a ...any) *AppError {
	return NewApplicationError(code, fmt.Sprintf(format, a...))
}

// sentinels for errors.Is matching on codes
var (
	ErrInvalidArgument    = NewApplicationError(InvalidArgument, "invalid argument")
	ErrNotFound           = NewApplicationError(NotFound, "not found")
	ErrFailedPrecondition = NewApplicationError(FailedPrecondition, "failed precondition")
	ErrOutOfRange         = NewApplicationError(OutOfRange, "out of range")
)

// evaluation failures. all of them display as ErrorMarker, the distinction
// only survives in Result.Err.
var (
	ErrSyntax          = errors.New("syntax error")
	ErrUnknownFunction = errors.New("unknown function")
	ErrNotNumeric      = errors.New("value is not numeric")
	ErrCircular        = errors.New("circular reference")
)
