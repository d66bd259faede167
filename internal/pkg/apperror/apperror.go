package apperror

import "net/http"

// Kind is the machine-readable category of an AppError.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation_error"
	KindAuth       Kind = "auth_error"
	KindPermission Kind = "permission_error"
	KindRateLimit  Kind = "rate_limited"
	KindInternal   Kind = "internal_error"
)

// AppError is a custom error type that includes an HTTP status code, an error kind and an optional cause.
type AppError struct {
	Kind    Kind   // Machine-readable category
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same kind and message.
// Sentinels are compared this way so that wrapped copies still match.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New creates a new AppError with a kind, status code and message.
func New(kind Kind, code int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, kind Kind, code int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Validation(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(KindAuth, http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(KindPermission, http.StatusForbidden, message)
}
