package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrUsernameTaken      = apperror.New(apperror.KindValidation, http.StatusConflict, "username already taken")
	ErrInvalidUsername    = apperror.Validation("username must be 1-150 characters of letters, digits and @.+-_")
	ErrPasswordTooShort   = apperror.Validation("password must be at least 8 characters")
	ErrPasswordTooLong    = apperror.Validation("password must be at most 72 bytes")
	ErrInvalidCredentials = apperror.Unauthorized("invalid username or password")
	ErrInactiveUser       = apperror.Unauthorized("user is inactive")
)

// User represents an account. Any user may act as both host and guest.
type User struct {
	ID           string // UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	IsActive     bool
}
