package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

// LimitRepository keeps the attempt log in Postgres. Rows are append-only;
// old ones are only ever excluded by the time-range predicate.
type LimitRepository struct {
	db Querier
}

func NewLimitRepository(db Querier) *LimitRepository {
	return &LimitRepository{db: db}
}

func (r *LimitRepository) CountSince(ctx context.Context, key domain.LimitKey, from time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM limit_attempts
		WHERE ip_address = $1 AND login = $2 AND endpoint = $3 AND attempt_at >= $4
	`, key.IP, key.Login, key.Endpoint, from).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	return count, nil
}

func (r *LimitRepository) Record(ctx context.Context, attempt *domain.LimitAttempt) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO limit_attempts (ip_address, login, endpoint, attempt_at)
		VALUES ($1, $2, $3, $4)
	`, attempt.IPAddress, attempt.Login, attempt.Endpoint, attempt.AttemptAt)

	return err
}
