package utils

import (
	"fmt"
	"net/http"
)

// Kind classifies application errors so callers branch on the class of
// failure instead of matching message strings.
type Kind string

const (
	// KindValidation marks 4xx input failures, never auto-retried.
	KindValidation Kind = "validation"
	// KindNotFound marks missing rows.
	KindNotFound Kind = "not_found"
	// KindSignature marks a failed signature check. Logged at warning or
	// above and never retried; a bad signature is an attack or a defect,
	// not transience.
	KindSignature Kind = "signature_invalid"
	// KindGateway marks a definite upstream failure, retryable with backoff.
	KindGateway Kind = "gateway"
	// KindConflict marks invalid transitions and double-processing guards.
	KindConflict Kind = "state_conflict"
	// KindTransient marks storage/cache unavailability, retryable.
	KindTransient Kind = "transient"
	// KindUnknown marks an operation whose outcome is unresolved (e.g. a
	// gateway timeout during capture). Callers must re-query gateway state
	// before concluding failure.
	KindUnknown Kind = "unknown"
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationFailed creates a validation error (400)
func ValidationFailed(message string, err error) *AppError {
	return NewAppError(KindValidation, http.StatusBadRequest, message, err)
}

// NotFoundErr creates a not-found error (404)
func NotFoundErr(message string) *AppError {
	return NewAppError(KindNotFound, http.StatusNotFound, message, nil)
}

// SignatureInvalid creates a signature verification error (400)
func SignatureInvalid(message string) *AppError {
	return NewAppError(KindSignature, http.StatusBadRequest, message, nil)
}

// GatewayFailed creates a definite upstream failure (502)
func GatewayFailed(message string, err error) *AppError {
	return NewAppError(KindGateway, http.StatusBadGateway, message, err)
}

// StateConflict creates a conflict error (409)
func StateConflict(message string) *AppError {
	return NewAppError(KindConflict, http.StatusConflict, message, nil)
}

// TransientErr creates a retryable infrastructure error (503)
func TransientErr(message string, err error) *AppError {
	return NewAppError(KindTransient, http.StatusServiceUnavailable, message, err)
}

// UnknownOutcome creates an unresolved-outcome error (502). The caller must
// re-verify gateway state before retrying; the operation may have succeeded.
func UnknownOutcome(message string, err error) *AppError {
	return NewAppError(KindUnknown, http.StatusBadGateway, message, err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError returns the AppError if the error is an AppError
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
