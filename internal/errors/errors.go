package errors

import (
	"errors"
)

// Domain failures are terminal for the calling request. Store and network
// failures are wrapped in ErrUnavailable so callers can tell a retryable
// outage apart from a definitive rejection.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReused        = errors.New("refresh token already used")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionGone        = errors.New("session no longer exists")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrLoginAlreadyInUse  = errors.New("login already in use")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrInvalidCode        = errors.New("code is incorrect or expired")
	ErrUnavailable        = errors.New("storage unavailable")
)
