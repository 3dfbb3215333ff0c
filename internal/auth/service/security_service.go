package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
)

// SecurityService exposes the device-session management surface: listing a
// user's live sessions and terminating them individually or in bulk.
type SecurityService struct {
	sessions domain.SessionRepository
	cfg      *config.Config
	logger   *zap.Logger
}

func NewSecurityService(sessions domain.SessionRepository, cfg *config.Config, logger *zap.Logger) *SecurityService {
	return &SecurityService{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *SecurityService) ListDevices(ctx context.Context, userID string) ([]dto.DeviceOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}

	devices := make([]dto.DeviceOutput, 0, len(sessions))
	for _, sess := range sessions {
		devices = append(devices, dto.DeviceOutput{
			DeviceID:       sess.DeviceID,
			Title:          sess.DeviceName,
			IP:             sess.IPAddress,
			LastActiveDate: sess.IssuedAt,
		})
	}

	return devices, nil
}

// TerminateDevice removes one of the caller's sessions. Terminating a device
// that does not belong to the caller or no longer exists reports
// ErrSessionGone.
func (s *SecurityService) TerminateDevice(ctx context.Context, userID, deviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	removed, err := s.sessions.Remove(ctx, userID, deviceID)
	if err != nil {
		return storeFailure(err)
	}

	if !removed {
		return autherror.ErrSessionGone
	}

	s.logger.Info("device session terminated",
		zap.String("user_id", userID),
		zap.String("device_id", deviceID))

	return nil
}

// TerminateOtherDevices removes every session of the user except the one the
// call was made from.
func (s *SecurityService) TerminateOtherDevices(ctx context.Context, userID, keepDeviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.sessions.RemoveAllExcept(ctx, userID, keepDeviceID); err != nil {
		return storeFailure(err)
	}

	return nil
}
