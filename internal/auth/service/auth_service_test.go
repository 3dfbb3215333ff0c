package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreTimeout: 5 * time.Second,
		BcryptCost:   bcrypt.MinCost,
	}
}

func testTokenService() *service.TokenService {
	return service.NewTokenService("test-access-secret", "test-refresh-secret",
		15*time.Minute, 24*time.Hour)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func confirmedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           "user-123",
		Login:        "vlad",
		Email:        "vlad@example.com",
		PasswordHash: mustHash(t, password),
		IsConfirmed:  true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	input := dto.LoginInput{
		Login:     "vlad",
		Password:  "Secret123!",
		IPAddress: "1.2.3.4",
		UserAgent: "test-agent",
	}

	var recorded *domain.Session

	mockUsers.EXPECT().GetByLogin(gomock.Any(), input.Login).Return(confirmedUser(t, input.Password), nil)
	mockSessions.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *domain.Session) error {
			recorded = session
			return nil
		})

	pair, err := s.Login(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The refresh token decodes to the device the session was recorded for,
	// with the same issuance window.
	claims, err := tokens.DecodeRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.Equal(t, "user-123", recorded.UserID)
	assert.Equal(t, claims.DeviceID, recorded.DeviceID)
	assert.Equal(t, claims.IssuedAt.Time, recorded.IssuedAt)
	assert.Equal(t, "test-agent", recorded.DeviceName)
	assert.Equal(t, "1.2.3.4", recorded.IPAddress)
}

// Wrong password, unknown login, banned and unconfirmed accounts all fail
// with the same error so callers cannot tell which field was wrong.
func TestAuthService_Login_UniformRejection(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
	}{
		{
			name: "unknown login",
			user: nil,
		},
		{
			name: "wrong password",
			user: &domain.User{ID: "user-123", PasswordHash: "$2a$04$invalidhash", IsConfirmed: true},
		},
		{
			name: "banned user",
			user: &domain.User{ID: "user-123", IsConfirmed: true, IsBanned: true},
		},
		{
			name: "unconfirmed user",
			user: &domain.User{ID: "user-123", IsConfirmed: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUsers := mocks.NewMockUserRepository(ctrl)
			mockSessions := mocks.NewMockSessionRepository(ctrl)
			mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)

			s := service.NewAuthService(mockUsers, mockSessions, mockRevoked,
				testTokenService(), testConfig(), zap.NewNop())

			mockUsers.EXPECT().GetByLogin(gomock.Any(), "vlad").Return(tt.user, nil)

			pair, err := s.Login(context.Background(), dto.LoginInput{Login: "vlad", Password: "Secret123!"})

			assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
			assert.Nil(t, pair)
		})
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked,
		testTokenService(), testConfig(), zap.NewNop())

	mockUsers.EXPECT().GetByLogin(gomock.Any(), "vlad").Return(nil, errors.New("connection refused"))

	pair, err := s.Login(context.Background(), dto.LoginInput{Login: "vlad", Password: "Secret123!"})

	assert.ErrorIs(t, err, autherror.ErrUnavailable)
	assert.Nil(t, pair)
}

func TestAuthService_Refresh_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	oldPair, err := tokens.Generate("user-123", "device-456")
	require.NoError(t, err)
	oldClaims, err := tokens.DecodeRefreshToken(oldPair.RefreshToken)
	require.NoError(t, err)

	liveSession := &domain.Session{
		UserID:    "user-123",
		DeviceID:  "device-456",
		IssuedAt:  oldClaims.IssuedAt.Time,
		ExpiresAt: oldClaims.ExpiresAt.Time,
	}

	mockRevoked.EXPECT().Revoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token *domain.RevokedToken) (bool, error) {
			assert.Equal(t, service.HashToken(oldPair.RefreshToken), token.TokenHash)
			assert.Equal(t, "user-123", token.UserID)
			return true, nil
		})
	mockSessions.EXPECT().Find(gomock.Any(), "user-123", "device-456").Return(liveSession, nil)
	mockSessions.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	newPair, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: oldPair.RefreshToken})

	require.NoError(t, err)
	require.NotNil(t, newPair)
	assert.NotEqual(t, oldPair.RefreshToken, newPair.RefreshToken)

	// Rotation preserves the device ID.
	newClaims, err := tokens.DecodeRefreshToken(newPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "device-456", newClaims.DeviceID)
}

// A token that lost the revocation race is rejected before any session or
// user state is touched.
func TestAuthService_Refresh_ReuseDetected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	pair, err := tokens.Generate("user-123", "device-456")
	require.NoError(t, err)

	mockRevoked.EXPECT().Revoke(gomock.Any(), gomock.Any()).Return(false, nil)

	newPair, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: pair.RefreshToken})

	assert.ErrorIs(t, err, autherror.ErrTokenReused)
	assert.Nil(t, newPair)
}

func TestAuthService_Refresh_SessionGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	pair, err := tokens.Generate("user-123", "device-456")
	require.NoError(t, err)

	mockRevoked.EXPECT().Revoke(gomock.Any(), gomock.Any()).Return(true, nil)
	mockSessions.EXPECT().Find(gomock.Any(), "user-123", "device-456").Return(nil, nil)

	newPair, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: pair.RefreshToken})

	assert.ErrorIs(t, err, autherror.ErrSessionGone)
	assert.Nil(t, newPair)
}

// A session superseded by a later login carries a different issuance time;
// the stale token is then as good as gone.
func TestAuthService_Refresh_SupersededSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	pair, err := tokens.Generate("user-123", "device-456")
	require.NoError(t, err)

	superseded := &domain.Session{
		UserID:    "user-123",
		DeviceID:  "device-456",
		IssuedAt:  time.Now().Add(time.Hour).Truncate(time.Second),
		ExpiresAt: time.Now().Add(25 * time.Hour),
	}

	mockRevoked.EXPECT().Revoke(gomock.Any(), gomock.Any()).Return(true, nil)
	mockSessions.EXPECT().Find(gomock.Any(), "user-123", "device-456").Return(superseded, nil)

	newPair, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: pair.RefreshToken})

	assert.ErrorIs(t, err, autherror.ErrSessionGone)
	assert.Nil(t, newPair)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked,
		testTokenService(), testConfig(), zap.NewNop())

	newPair, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "garbage"})

	assert.ErrorIs(t, err, autherror.ErrInvalidToken)
	assert.Nil(t, newPair)
}

func TestAuthService_Logout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	pair, err := tokens.Generate("user-123", "device-456")
	require.NoError(t, err)

	mockRevoked.EXPECT().Revoke(gomock.Any(), gomock.Any()).Return(true, nil)
	mockSessions.EXPECT().Remove(gomock.Any(), "user-123", "device-456").Return(true, nil)

	err = s.Logout(context.Background(), dto.RefreshInput{RefreshToken: pair.RefreshToken})

	assert.NoError(t, err)
}

// Logout consumes the token the same way refresh does, so a replayed token
// fails identically on either endpoint.
func TestAuthService_Logout_ReuseDetected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)
	tokens := testTokenService()

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked, tokens, testConfig(), zap.NewNop())

	pair, err := tokens.Generate("user-123", "device-456")
	require.NoError(t, err)

	mockRevoked.EXPECT().Revoke(gomock.Any(), gomock.Any()).Return(false, nil)

	err = s.Logout(context.Background(), dto.RefreshInput{RefreshToken: pair.RefreshToken})

	assert.ErrorIs(t, err, autherror.ErrTokenReused)
}

func TestAuthService_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionRepository(ctrl)
	mockRevoked := mocks.NewMockRevokedTokenRepository(ctrl)

	s := service.NewAuthService(mockUsers, mockSessions, mockRevoked,
		testTokenService(), testConfig(), zap.NewNop())

	t.Run("success", func(t *testing.T) {
		mockUsers.EXPECT().GetByID(gomock.Any(), "user-123").Return(&domain.User{
			ID:    "user-123",
			Login: "vlad",
			Email: "vlad@example.com",
		}, nil)

		me, err := s.Me(context.Background(), "user-123")
		require.NoError(t, err)
		assert.Equal(t, "vlad", me.Login)
		assert.Equal(t, "vlad@example.com", me.Email)
	})

	t.Run("user gone", func(t *testing.T) {
		mockUsers.EXPECT().GetByID(gomock.Any(), "user-123").Return(nil, nil)

		_, err := s.Me(context.Background(), "user-123")
		assert.ErrorIs(t, err, autherror.ErrSessionGone)
	})
}
