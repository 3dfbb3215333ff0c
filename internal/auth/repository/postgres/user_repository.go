package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, login, email, password_hash, is_confirmed,
		COALESCE(confirmation_code, ''), COALESCE(code_expires_at, 'epoch'::timestamptz),
		is_banned, created_at, updated_at`

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Login, &user.Email, &user.PasswordHash, &user.IsConfirmed,
		&user.ConfirmationCode, &user.CodeExpiresAt, &user.IsBanned, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 LIMIT 1;`

	return r.scanUser(r.db.QueryRow(ctx, query, login))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1;`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1;`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE confirmation_code = $1 LIMIT 1;`

	return r.scanUser(r.db.QueryRow(ctx, query, code))
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, login, email, password_hash, is_confirmed, confirmation_code,
			code_expires_at, is_banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Login, user.Email, user.PasswordHash, user.IsConfirmed,
		user.ConfirmationCode, user.CodeExpiresAt, user.IsBanned, user.CreatedAt, user.UpdatedAt)

	return err
}

// SetConfirmed clears the pending code in the same statement, preserving the
// rule that a user is either confirmed or unconfirmed-with-pending-code.
func (r *UserRepository) SetConfirmed(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_confirmed = TRUE, confirmation_code = NULL, code_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND is_confirmed = FALSE
	`, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) SetConfirmationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET confirmation_code = $2, code_expires_at = $3, updated_at = now()
		WHERE id = $1
	`, id, code, expiresAt)

	return err
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, hash)

	return err
}
