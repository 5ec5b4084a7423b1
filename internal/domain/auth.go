package domain

import (
	"time"
)

var (
	ErrUserExists          = NewError(KindDuplicate, "This email already exists")
	ErrUserNotFound        = NewError(KindNotFound, "User not found")
	ErrInvalidCredentials  = NewError(KindUnauthorized, "Invalid credentials")
	ErrTokenInvalid        = NewError(KindUnauthorized, "Token is invalid or expired")
	ErrMissingCredential   = NewError(KindUnauthorized, "Missing authorization header")
	ErrMalformedCredential = NewError(KindUnauthorized, "Authorization header must use the Bearer scheme")
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the caller as asserted by a verified token.
type Identity struct {
	UserID string
	Email  string
}
