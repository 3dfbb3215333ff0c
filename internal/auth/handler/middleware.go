package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/blogger-auth/pkg/constant"
)

const (
	localUserID   = "userID"
	localDeviceID = "deviceID"
)

// limitKeyBody is the slice of the request body the rate limiter keys on.
// Parsing failures leave it empty: malformed requests still burn an attempt.
type limitKeyBody struct {
	Login string `json:"login"`
	Email string `json:"email"`
}

// RateLimit gates an endpoint on the sliding-window counter. withLogin keys
// the window by IP plus the login (or email) carried in the body; otherwise
// the window is IP-only.
func RateLimit(limiter *service.LimitService, cfg config.RateLimitConfig, endpoint string, withLogin bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := domain.LimitKey{
			IP:       c.IP(),
			Endpoint: endpoint,
		}

		if withLogin {
			var body limitKeyBody
			if err := c.BodyParser(&body); err == nil {
				key.Login = body.Login
				if key.Login == "" {
					key.Login = body.Email
				}
			}
		}

		allowed, err := limiter.CheckLimit(c.Context(), key, cfg.Window, cfg.MaxAttempts)
		if err != nil {
			return respondError(c, err)
		}

		if !allowed {
			return respondError(c, autherror.ErrTooManyRequests)
		}

		return c.Next()
	}
}

// RequireAuth authenticates the request by its bearer access token and
// stores the caller's user ID in locals. Malformed tokens are rejected
// before any business logic runs.
func RequireAuth(tokens service.TokenGenerator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			return respondError(c, autherror.ErrInvalidToken)
		}

		claims, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(localUserID, claims.UserID)

		return c.Next()
	}
}

// RequireRefreshCookie authenticates the request by its refresh-token cookie
// and stores the token's user and device IDs in locals. Used by the
// device-session management endpoints.
func RequireRefreshCookie(tokens service.TokenGenerator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(constant.RefreshTokenCookie)
		if cookie == "" {
			return respondError(c, autherror.ErrInvalidToken)
		}

		claims, err := tokens.VerifyRefreshToken(cookie)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localDeviceID, claims.DeviceID)

		return c.Next()
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrTokenReused),
		errors.Is(err, autherror.ErrInvalidToken),
		errors.Is(err, autherror.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, autherror.ErrSessionGone):
		return fiber.StatusForbidden
	case errors.Is(err, autherror.ErrLoginAlreadyInUse),
		errors.Is(err, autherror.ErrEmailAlreadyInUse),
		errors.Is(err, autherror.ErrInvalidCode):
		return fiber.StatusBadRequest
	case errors.Is(err, autherror.ErrTooManyRequests):
		return fiber.StatusTooManyRequests
	case errors.Is(err, autherror.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
