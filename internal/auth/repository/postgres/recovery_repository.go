package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

type RecoveryCodeRepository struct {
	db Querier
}

func NewRecoveryCodeRepository(db Querier) *RecoveryCodeRepository {
	return &RecoveryCodeRepository{db: db}
}

// Upsert replaces any outstanding code for the user, consumed or not.
func (r *RecoveryCodeRepository) Upsert(ctx context.Context, code *domain.RecoveryCode) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO recovery_codes (user_id, code, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, FALSE)
		ON CONFLICT (user_id)
		DO UPDATE SET
			code = EXCLUDED.code,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at,
			consumed = FALSE
	`, code.UserID, code.Code, code.IssuedAt, code.ExpiresAt)

	return err
}

// Consume marks the code used in one conditional update. Expired, consumed
// and unknown codes are indistinguishable: all return "".
func (r *RecoveryCodeRepository) Consume(ctx context.Context, code string, now time.Time) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx, `
		UPDATE recovery_codes
		SET consumed = TRUE
		WHERE code = $1 AND consumed = FALSE AND expires_at > $2
		RETURNING user_id;
	`, code, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to consume recovery code: %w", err)
	}

	return userID, nil
}
