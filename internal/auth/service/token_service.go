package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service TokenGenerator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
)

type TokenGenerator interface {
	Generate(userID, deviceID string) (*domain.TokenPair, error)
	VerifyAccessToken(tokenString string) (*AccessClaims, error)
	VerifyRefreshToken(tokenString string) (*RefreshClaims, error)
	DecodeRefreshToken(tokenString string) (*RefreshClaims, error)
	RefreshTokenExpiry() time.Duration
}

// TokenService signs and verifies both token classes. Access and refresh
// tokens use independent secrets so that compromise of one does not
// compromise the other.
type TokenService struct {
	accessSecret  string
	refreshSecret string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// RefreshClaims are device-scoped; access tokens carry no device binding.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

func NewTokenService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (ts *TokenService) Generate(userID, deviceID string) (*domain.TokenPair, error) {
	now := time.Now()

	accessClaims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	refreshClaims := RefreshClaims{
		UserID:   userID,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(ts.accessSecret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		refreshClaims).SignedString([]byte(ts.refreshSecret))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (ts *TokenService) RefreshTokenExpiry() time.Duration {
	return ts.refreshExpiry
}

// VerifyAccessToken parses and validates the given access token string.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ts.verify(tokenString, claims, ts.accessSecret); err != nil {
		return nil, err
	}

	return claims, nil
}

func (ts *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.verify(tokenString, claims, ts.refreshSecret); err != nil {
		return nil, err
	}

	return claims, nil
}

func (ts *TokenService) verify(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return autherror.ErrTokenExpired
		}
		return autherror.ErrInvalidToken
	}

	if !token.Valid {
		return autherror.ErrInvalidToken
	}

	return nil
}

// DecodeRefreshToken parses the claims without checking the signature. It is
// used to reject structurally malformed tokens before any business logic
// runs, and to read issuance timestamps off tokens this service just signed.
func (ts *TokenService) DecodeRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, autherror.ErrInvalidToken
	}

	return claims, nil
}

// HashToken derives the opaque identity under which a refresh token is
// revoked. Raw tokens are never persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
