package postgres

import (
	"context"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

type RevokedTokenRepository struct {
	db Querier
}

func NewRevokedTokenRepository(db Querier) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke is a compare-and-set against the token_hash primary key. When two
// concurrent refresh calls race on the same token, exactly one insert lands
// and the other sees zero rows affected.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, token *domain.RevokedToken) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO revoked_tokens (token_hash, user_id, user_agent, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_hash) DO NOTHING
	`, token.TokenHash, token.UserID, token.UserAgent, token.RevokedAt)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
