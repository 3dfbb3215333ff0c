package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/mocks"
)

func loginFrom(t *testing.T, app *fiber.App, userAgent string) *http.Cookie {
	t.Helper()

	req := postJSON(t, "/api/v1/auth/login", dto.LoginInput{Login: "vlad", Password: "Secret123!"})
	req.Header.Set(fiber.HeaderUserAgent, userAgent)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := refreshCookie(t, resp)
	require.NotNil(t, cookie)
	return cookie
}

func listDevices(t *testing.T, app *fiber.App, cookie *http.Cookie) []dto.DeviceOutput {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/security/devices", nil)
	req.AddCookie(cookie)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var devices []dto.DeviceOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&devices))
	return devices
}

func TestDeviceSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	app := newTestApp(t, mockUsers)

	user := &domain.User{
		ID:           "user-123",
		Login:        "vlad",
		PasswordHash: mustHash(t, "Secret123!"),
		IsConfirmed:  true,
	}
	mockUsers.EXPECT().GetByLogin(gomock.Any(), "vlad").Return(user, nil).Times(3)

	laptop := loginFrom(t, app, "laptop")
	phone := loginFrom(t, app, "phone")
	tablet := loginFrom(t, app, "tablet")

	devices := listDevices(t, app, laptop)
	assert.Len(t, devices, 3)

	// Terminating all other devices keeps only the calling one.
	req := httptest.NewRequest(fiber.MethodDelete, "/api/v1/security/devices", nil)
	req.AddCookie(laptop)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	devices = listDevices(t, app, laptop)
	require.Len(t, devices, 1)
	assert.Equal(t, "laptop", devices[0].Title)

	// The terminated devices' sessions are gone, so their refresh tokens are
	// dead for rotation.
	for _, cookie := range []*http.Cookie{phone, tablet} {
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/auth/refresh-token", nil)
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	}
}

func TestTerminateDevice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	app := newTestApp(t, mockUsers)

	user := &domain.User{
		ID:           "user-123",
		Login:        "vlad",
		PasswordHash: mustHash(t, "Secret123!"),
		IsConfirmed:  true,
	}
	mockUsers.EXPECT().GetByLogin(gomock.Any(), "vlad").Return(user, nil).Times(2)

	laptop := loginFrom(t, app, "laptop")
	_ = loginFrom(t, app, "phone")

	devices := listDevices(t, app, laptop)
	require.Len(t, devices, 2)

	var phoneID string
	for _, device := range devices {
		if device.Title == "phone" {
			phoneID = device.DeviceID
		}
	}
	require.NotEmpty(t, phoneID)

	req := httptest.NewRequest(fiber.MethodDelete, "/api/v1/security/devices/"+phoneID, nil)
	req.AddCookie(laptop)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// Deleting it again is a miss.
	req = httptest.NewRequest(fiber.MethodDelete, "/api/v1/security/devices/"+phoneID, nil)
	req.AddCookie(laptop)

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSecurityEndpoints_NoCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app := newTestApp(t, mocks.NewMockUserRepository(ctrl))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/security/devices", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
