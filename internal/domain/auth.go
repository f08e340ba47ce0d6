package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedOn    time.Time
}
