package domain

import "time"

type User struct {
	ID               string
	Login            string
	Email            string
	PasswordHash     string
	IsConfirmed      bool
	ConfirmationCode string
	CodeExpiresAt    time.Time
	IsBanned         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TokenPair is stateless; its effects are persisted through the Session the
// refresh token produces.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the server-side record of the currently valid device-bound
// refresh state. At most one live session exists per (UserID, DeviceID).
type Session struct {
	UserID     string
	DeviceID   string
	DeviceName string
	IPAddress  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// RevokedToken records a refresh token the instant it is consumed, whatever
// the outcome, so it can never be exchanged twice.
type RevokedToken struct {
	TokenHash string
	UserID    string
	UserAgent string
	RevokedAt time.Time
}

type LimitAttempt struct {
	IPAddress string
	Login     string
	Endpoint  string
	AttemptAt time.Time
}

// LimitKey scopes a rate-limit window. Login is empty for IP-only keys.
type LimitKey struct {
	IP       string
	Login    string
	Endpoint string
}

type RecoveryCode struct {
	Code      string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}
