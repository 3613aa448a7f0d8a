package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Memo error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// MemoError represents a structured error with code, status, and details.
type MemoError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MemoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MemoError {
	return &MemoError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a memory id that does not resolve.
// Private memories hidden from the caller use the same error so their
// existence is not revealed.
func NewNotFound(id int64) *MemoError {
	return &MemoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("memory with id %d not found", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *MemoError {
	return &MemoError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when the caller's context ends mid-operation.
func NewCancelled(operation string) *MemoError {
	return &MemoError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MemoError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MemoError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a MemoError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MemoError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}
