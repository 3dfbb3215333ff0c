package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
)

// AuthService orchestrates credential verification, token issuance and
// rotation, and session bookkeeping.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	revoked  domain.RevokedTokenRepository
	tokens   TokenGenerator
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	revoked domain.RevokedTokenRepository,
	tokens TokenGenerator,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		revoked:  revoked,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// RefreshTokenExpiry reports the configured refresh TTL; the HTTP layer uses
// it to bound the cookie lifetime.
func (s *AuthService) RefreshTokenExpiry() time.Duration {
	return s.tokens.RefreshTokenExpiry()
}

// storeFailure wraps repository errors so callers can treat them as a
// retryable outage, distinct from a definitive domain rejection.
func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", autherror.ErrUnavailable, err)
}

// Login verifies credentials and mints a token pair bound to a freshly
// generated device ID. Every failure mode reports the same
// ErrInvalidCredentials so callers cannot probe which field was wrong.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*domain.TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	user, err := s.users.GetByLogin(ctx, input.Login)
	if err != nil {
		return nil, storeFailure(err)
	}

	if user == nil || user.IsBanned || !user.IsConfirmed ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.logger.Info("login rejected", zap.String("ip", input.IPAddress))
		return nil, autherror.ErrInvalidCredentials
	}

	deviceID := uuid.NewString()

	pair, err := s.tokens.Generate(user.ID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.recordSession(ctx, pair.RefreshToken, input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.String("device_id", deviceID))

	return pair, nil
}

// Refresh exchanges a refresh token for a new pair exactly once. The token
// is marked revoked before its session is checked so that two concurrent
// calls with the same token can never both rotate: only the caller that wins
// the uniqueness insert proceeds.
func (s *AuthService) Refresh(ctx context.Context, input dto.RefreshInput) (*domain.TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	claims, err := s.tokens.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.consumeToken(ctx, input.RefreshToken, claims.UserID, input.UserAgent); err != nil {
		return nil, err
	}

	session, err := s.sessions.Find(ctx, claims.UserID, claims.DeviceID)
	if err != nil {
		return nil, storeFailure(err)
	}

	if session == nil || !session.IssuedAt.Equal(claims.IssuedAt.Time) {
		s.logger.Warn("refresh rejected, session gone",
			zap.String("user_id", claims.UserID),
			zap.String("device_id", claims.DeviceID))
		return nil, autherror.ErrSessionGone
	}

	// Rotation keeps the device ID; only the issuance window moves.
	pair, err := s.tokens.Generate(claims.UserID, claims.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	if err := s.recordSession(ctx, pair.RefreshToken, input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout consumes the refresh token and removes the device session. The
// reuse check is identical to Refresh's, so a replayed token fails the same
// way on either endpoint.
func (s *AuthService) Logout(ctx context.Context, input dto.RefreshInput) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	claims, err := s.tokens.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return err
	}

	if err := s.consumeToken(ctx, input.RefreshToken, claims.UserID, input.UserAgent); err != nil {
		return err
	}

	removed, err := s.sessions.Remove(ctx, claims.UserID, claims.DeviceID)
	if err != nil {
		return storeFailure(err)
	}

	if !removed {
		return autherror.ErrSessionGone
	}

	s.logger.Info("logout",
		zap.String("user_id", claims.UserID),
		zap.String("device_id", claims.DeviceID))

	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*dto.MeOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}

	if user == nil {
		return nil, autherror.ErrSessionGone
	}

	return &dto.MeOutput{
		UserID: user.ID,
		Login:  user.Login,
		Email:  user.Email,
	}, nil
}

// consumeToken is the revocation guard: a compare-and-set against the
// revoked-token uniqueness constraint. Losing the race means the token was
// already spent.
func (s *AuthService) consumeToken(ctx context.Context, rawToken, userID, userAgent string) error {
	ok, err := s.revoked.Revoke(ctx, &domain.RevokedToken{
		TokenHash: HashToken(rawToken),
		UserID:    userID,
		UserAgent: userAgent,
		RevokedAt: s.now(),
	})
	if err != nil {
		return storeFailure(err)
	}

	if !ok {
		s.logger.Warn("refresh token reuse detected", zap.String("user_id", userID))
		return autherror.ErrTokenReused
	}

	return nil
}

// recordSession decodes the freshly signed refresh token and upserts the
// per-device session from its claims, so the stored issuance window always
// matches the token exactly. Last writer wins per device.
func (s *AuthService) recordSession(ctx context.Context, refreshToken, ip, userAgent string) error {
	claims, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return err
	}

	session := &domain.Session{
		UserID:     claims.UserID,
		DeviceID:   claims.DeviceID,
		DeviceName: userAgent,
		IPAddress:  ip,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}

	if err := s.sessions.Upsert(ctx, session); err != nil {
		return storeFailure(err)
	}

	return nil
}
