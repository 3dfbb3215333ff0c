package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/blogger-auth/pkg/constant"
)

// RegisterRoutes wires every endpoint in a fixed middleware order:
// rate-limit, then authenticate, then handle.
func RegisterRoutes(
	app *fiber.App,
	h *AuthHandler,
	sh *SecurityHandler,
	limiter *service.LimitService,
	tokens service.TokenGenerator,
	cfg *config.Config,
) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/login",
		RateLimit(limiter, cfg.RateLimit, constant.EndpointLogin, true), h.Login)
	auth.Post("/registration",
		RateLimit(limiter, cfg.RateLimit, constant.EndpointRegistration, false), h.Register)
	auth.Post("/registration-confirmation",
		RateLimit(limiter, cfg.RateLimit, constant.EndpointConfirmation, false), h.ConfirmAccount)
	auth.Post("/registration-email-resending",
		RateLimit(limiter, cfg.RateLimit, constant.EndpointResendCode, false), h.ResendConfirmationCode)
	auth.Post("/password-recovery",
		RateLimit(limiter, cfg.RateLimit, constant.EndpointPasswordRecovery, true), h.RecoverPassword)
	auth.Post("/new-password",
		RateLimit(limiter, cfg.RateLimit, constant.EndpointNewPassword, true), h.NewPassword)

	auth.Post("/refresh-token", h.Refresh)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", RequireAuth(tokens), h.Me)

	security := app.Group("/api/v1/security", RequireRefreshCookie(tokens))
	security.Get("/devices", sh.ListDevices)
	security.Delete("/devices", sh.TerminateOtherDevices)
	security.Delete("/devices/:deviceId", sh.TerminateDevice)
}
