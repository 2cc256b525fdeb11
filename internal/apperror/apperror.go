// Package apperror defines the error kinds the access layer hands to callers.
// Handlers turn them into HTTP responses without exposing the wrapped cause.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an application error
type ErrorType int

const (
	// InternalError is for unexpected failures
	InternalError ErrorType = iota
	// NotFoundError represents a missing resource
	NotFoundError
	// InvalidCredentialError represents a failed login or an unusable session token
	InvalidCredentialError
	// AccessDeniedError represents a caller lacking the required role or ownership
	AccessDeniedError
	// ConflictError represents a uniqueness or state-transition conflict
	ConflictError
	// ValidationError represents missing or forbidden input fields
	ValidationError
	// TimeoutError represents a storage call that ran past its deadline
	TimeoutError
	// TransportError represents a failure talking to the storage service
	TransportError
)

var typeNames = map[ErrorType]string{
	InternalError:          "internal",
	NotFoundError:          "not_found",
	InvalidCredentialError: "invalid_credential",
	AccessDeniedError:      "access_denied",
	ConflictError:          "conflict",
	ValidationError:        "validation",
	TimeoutError:           "timeout",
	TransportError:         "transport",
}

func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// AppError is a typed error carrying a user-facing message and an optional cause
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case NotFoundError:
		return http.StatusNotFound
	case InvalidCredentialError:
		return http.StatusUnauthorized
	case AccessDeniedError:
		return http.StatusForbidden
	case ConflictError:
		return http.StatusConflict
	case ValidationError:
		return http.StatusBadRequest
	case TimeoutError:
		return http.StatusGatewayTimeout
	case TransportError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body returned for every failure
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ToResponse keeps only the user-facing message
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Kind: e.Type.String()}
}

func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Err: cause}
}

func NotFound(message string, cause error) *AppError {
	return New(NotFoundError, message, cause)
}

func InvalidCredential(message string, cause error) *AppError {
	return New(InvalidCredentialError, message, cause)
}

func AccessDenied(message string, cause error) *AppError {
	return New(AccessDeniedError, message, cause)
}

func Conflict(message string, cause error) *AppError {
	return New(ConflictError, message, cause)
}

func Validation(message string, cause error) *AppError {
	return New(ValidationError, message, cause)
}

func Timeout(message string, cause error) *AppError {
	return New(TimeoutError, message, cause)
}

func Transport(message string, cause error) *AppError {
	return New(TransportError, message, cause)
}

func Internal(message string, cause error) *AppError {
	return New(InternalError, message, cause)
}

// From returns the first AppError in err's chain, or wraps err as internal
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal error", err)
}

// Is reports whether err carries an AppError of the given type
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errType
}
