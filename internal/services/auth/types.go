package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmailTaken   = errors.New("email already registered")
)

// ErrInvalidCredentials is an ErrUnauthorized.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)

type AccessClaims struct {
	UserID    string
	SID       string
	ExpiresAt time.Time
}

type AuthResult struct {
	AccessToken   string
	AccessExpires time.Time
	User          model.User
}
