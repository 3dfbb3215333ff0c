package domain

//go:generate mockgen -destination=../../mocks/mock_repositories.go -package=mocks github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain UserRepository,SessionRepository,RevokedTokenRepository,LimitRepository,RecoveryCodeRepository,Notifier

import (
	"context"
	"time"
)

// Lookup methods return (nil, nil) when no row matches.
type UserRepository interface {
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByConfirmationCode(ctx context.Context, code string) (*User, error)
	Create(ctx context.Context, user *User) error
	SetConfirmed(ctx context.Context, id string) (bool, error)
	SetConfirmationCode(ctx context.Context, id, code string, expiresAt time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

type SessionRepository interface {
	// Upsert overwrites any existing session for (UserID, DeviceID).
	Upsert(ctx context.Context, session *Session) error
	// Find treats expired sessions as absent.
	Find(ctx context.Context, userID, deviceID string) (*Session, error)
	Remove(ctx context.Context, userID, deviceID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)
	RemoveAllExcept(ctx context.Context, userID, keepDeviceID string) error
}

type RevokedTokenRepository interface {
	// Revoke marks a token identity as spent. It returns false when the
	// identity was already present, which is how concurrent refresh calls
	// with the same token are reduced to a single winner.
	Revoke(ctx context.Context, token *RevokedToken) (bool, error)
}

type LimitRepository interface {
	CountSince(ctx context.Context, key LimitKey, from time.Time) (int, error)
	Record(ctx context.Context, attempt *LimitAttempt) error
}

type RecoveryCodeRepository interface {
	// Upsert supersedes any outstanding code for the same user.
	Upsert(ctx context.Context, code *RecoveryCode) error
	// Consume atomically marks an unconsumed, unexpired code as used and
	// returns the owning user ID, or "" when no such code exists. Expired
	// and already-consumed codes are indistinguishable from unknown ones.
	Consume(ctx context.Context, code string, now time.Time) (string, error)
}

type Notifier interface {
	SendConfirmationCode(ctx context.Context, email, code string) error
	SendRecoveryCode(ctx context.Context, email, code string) error
}
