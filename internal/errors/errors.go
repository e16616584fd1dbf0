package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Holocron error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrTransaction    ErrorCode = "TRANSACTION"     // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrNetwork        ErrorCode = "NETWORK"         // 502
	ErrConnection     ErrorCode = "CONNECTION"      // 503
)

// HolocronError represents a structured error with code, status, and details.
type HolocronError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *HolocronError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *HolocronError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *HolocronError {
	return &HolocronError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a planet cannot be found.
// An empty identifier means the caller supplied no identifier at all.
func NewNotFound(identifier string) *HolocronError {
	if identifier == "" {
		return &HolocronError{
			Code:    ErrNotFound,
			Status:  404,
			Message: "planet id is undefined",
		}
	}
	return &HolocronError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("planet not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewTransaction creates a 500 error for a store write that failed to commit.
func NewTransaction(op string, err error) *HolocronError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &HolocronError{
		Code:    ErrTransaction,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewNetwork creates a 502 error for a failed or non-successful remote fetch.
func NewNetwork(url string, err error) *HolocronError {
	msg := fmt.Sprintf("fetch %s failed", url)
	if err != nil {
		msg = fmt.Sprintf("fetch %s failed: %v", url, err)
	}
	return &HolocronError{
		Code:    ErrNetwork,
		Status:  502,
		Message: msg,
		Details: map[string]any{"url": url},
		Err:     err,
	}
}

// NewConnection creates a 503 error when the local database cannot be opened or upgraded.
func NewConnection(err error) *HolocronError {
	msg := "local database unavailable"
	if err != nil {
		msg = fmt.Sprintf("local database unavailable: %v", err)
	}
	return &HolocronError{
		Code:    ErrConnection,
		Status:  503,
		Message: msg,
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HolocronError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HolocronError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// As returns the HolocronError in err's chain, if any.
func As(err error) (*HolocronError, bool) {
	var hErr *HolocronError
	if stderrors.As(err, &hErr) {
		return hErr, true
	}
	return nil, false
}

// Is checks if an error is (or wraps) a HolocronError with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := As(err); ok {
		return hErr.Code == code
	}
	return false
}
