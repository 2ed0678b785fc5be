// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-buf.

package api

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeAllocationFailed
	ErrCodeLimitExceeded
	ErrCodePoolExhausted
	ErrCodeInvalidState
	ErrCodeGroupBusy
	ErrCodeNotSupported
	ErrCodeNotFound
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeAllocationFailed:
		return "allocation failed"
	case ErrCodeLimitExceeded:
		return "limit exceeded"
	case ErrCodePoolExhausted:
		return "pool exhausted"
	case ErrCodeInvalidState:
		return "invalid state"
	case ErrCodeGroupBusy:
		return "group busy"
	case ErrCodeNotSupported:
		return "not supported"
	case ErrCodeNotFound:
		return "not found"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Sentinel errors, one per code. Match with errors.Is; any *Error with the
// same code compares equal.
var (
	ErrInvalidArgument  = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrAllocationFailed = NewError(ErrCodeAllocationFailed, "allocation failed")
	ErrLimitExceeded    = NewError(ErrCodeLimitExceeded, "group limit exceeded")
	ErrPoolExhausted    = NewError(ErrCodePoolExhausted, "pool exhausted")
	ErrInvalidState     = NewError(ErrCodeInvalidState, "invalid buffer state")
	ErrGroupBusy        = NewError(ErrCodeGroupBusy, "group busy")
	ErrNotSupported     = NewError(ErrCodeNotSupported, "operation not supported")
	ErrNotFound         = NewError(ErrCodeNotFound, "resource not found")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Context) > 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a structured error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap attaches a cause to the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// CodeOf returns the code of the first structured error in err's chain.
// It returns ErrCodeOK for nil and -1 when the chain holds no *Error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}
