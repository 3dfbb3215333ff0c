package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/service"
)

// SecurityHandler serves the device-session management endpoints. All of
// them authenticate by the refresh cookie, so the device the call is made
// from is always known.
type SecurityHandler struct {
	securityService *service.SecurityService
}

func NewSecurityHandler(securityService *service.SecurityService) *SecurityHandler {
	return &SecurityHandler{securityService: securityService}
}

func (h *SecurityHandler) ListDevices(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)

	devices, err := h.securityService.ListDevices(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(devices)
}

func (h *SecurityHandler) TerminateDevice(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)
	deviceID := c.Params("deviceId")

	if err := h.securityService.TerminateDevice(c.Context(), userID, deviceID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SecurityHandler) TerminateOtherDevices(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)
	deviceID, _ := c.Locals(localDeviceID).(string)

	if err := h.securityService.TerminateOtherDevices(c.Context(), userID, deviceID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
