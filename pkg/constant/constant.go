package constant

import "time"

const (
	// Endpoint keys used by the rate limiter. Attempts for different
	// endpoints never share a window.
	EndpointLogin            = "login"
	EndpointRegistration     = "registration"
	EndpointConfirmation     = "registration-confirmation"
	EndpointResendCode       = "registration-email-resending"
	EndpointPasswordRecovery = "password-recovery"
	EndpointNewPassword      = "new-password"

	ConfirmationCodeTTL = 24 * time.Hour
	RecoveryCodeTTL     = 1 * time.Hour

	RefreshTokenCookie = "refreshToken"

	DefaultBcryptCost = 10
)
