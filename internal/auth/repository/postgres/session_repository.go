package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

type SessionRepository struct {
	db Querier
}

func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert keeps at most one live session per (user, device): issuing a new
// refresh token for the same device supersedes the prior session.
func (r *SessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (user_id, device_id, device_name, ip_address, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, device_id)
		DO UPDATE SET
			device_name = EXCLUDED.device_name,
			ip_address = EXCLUDED.ip_address,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at
	`, session.UserID, session.DeviceID, session.DeviceName, session.IPAddress,
		session.IssuedAt, session.ExpiresAt)

	return err
}

func (r *SessionRepository) Find(ctx context.Context, userID, deviceID string) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, device_id, device_name, ip_address, issued_at, expires_at
		FROM sessions
		WHERE user_id = $1 AND device_id = $2 AND expires_at > now()
		LIMIT 1;
	`, userID, deviceID)

	var session domain.Session
	err := row.Scan(&session.UserID, &session.DeviceID, &session.DeviceName,
		&session.IPAddress, &session.IssuedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

func (r *SessionRepository) Remove(ctx context.Context, userID, deviceID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, device_id, device_name, ip_address, issued_at, expires_at
		FROM sessions
		WHERE user_id = $1 AND expires_at > now()
		ORDER BY issued_at DESC;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(&session.UserID, &session.DeviceID, &session.DeviceName,
			&session.IPAddress, &session.IssuedAt, &session.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (r *SessionRepository) RemoveAllExcept(ctx context.Context, userID, keepDeviceID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1 AND device_id <> $2
	`, userID, keepDeviceID)

	return err
}
