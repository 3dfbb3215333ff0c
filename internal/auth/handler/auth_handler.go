package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/blogger-auth/pkg/constant"
)

type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
}

func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
	}
}

// Login responds with the access token; the refresh token only travels as an
// HTTP-only secure cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	pair, err := h.authService.Login(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	if _, err := h.accountService.Register(c.Context(), input); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) ConfirmAccount(c *fiber.Ctx) error {
	var input dto.ConfirmationCodeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	confirmed, err := h.accountService.ConfirmAccount(c.Context(), input.Code)
	if err != nil {
		return respondError(c, err)
	}

	if !confirmed {
		return respondError(c, autherror.ErrInvalidCode)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) ResendConfirmationCode(c *fiber.Ctx) error {
	var input dto.EmailInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	resent, err := h.accountService.ResendConfirmationCode(c.Context(), input.Email)
	if err != nil {
		return respondError(c, err)
	}

	if !resent {
		return respondError(c, autherror.ErrInvalidCode)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	input := dto.RefreshInput{
		RefreshToken: c.Cookies(constant.RefreshTokenCookie),
		IPAddress:    c.IP(),
		UserAgent:    string(c.Request().Header.UserAgent()),
	}

	if input.RefreshToken == "" {
		return respondError(c, autherror.ErrInvalidToken)
	}

	pair, err := h.authService.Refresh(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	input := dto.RefreshInput{
		RefreshToken: c.Cookies(constant.RefreshTokenCookie),
		IPAddress:    c.IP(),
		UserAgent:    string(c.Request().Header.UserAgent()),
	}

	if input.RefreshToken == "" {
		return respondError(c, autherror.ErrInvalidToken)
	}

	if err := h.authService.Logout(c.Context(), input); err != nil {
		return respondError(c, err)
	}

	c.ClearCookie(constant.RefreshTokenCookie)

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) RecoverPassword(c *fiber.Ctx) error {
	var input dto.EmailInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	// Unknown emails no-op silently; the response is 204 either way.
	if err := h.accountService.SendRecoveryCode(c.Context(), input.Email); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) NewPassword(c *fiber.Ctx) error {
	var input dto.NewPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	if err := h.accountService.ConfirmPasswordRecovery(c.Context(), input); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)

	me, err := h.authService.Me(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(me)
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     constant.RefreshTokenCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(h.authService.RefreshTokenExpiry()),
	})
}
