package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

// LimitService is a sliding-window attempt counter: it counts attempts for
// the key over the trailing window and records the current attempt
// unconditionally, so denied attempts still weigh on future windows. The
// burst-at-boundary imprecision of counting by query is accepted for the
// simplicity it buys.
type LimitService struct {
	attempts domain.LimitRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewLimitService(attempts domain.LimitRepository, logger *zap.Logger) *LimitService {
	return &LimitService{
		attempts: attempts,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *LimitService) CheckLimit(ctx context.Context, key domain.LimitKey, window time.Duration, maxAttempts int) (bool, error) {
	now := s.now()

	count, err := s.attempts.CountSince(ctx, key, now.Add(-window))
	if err != nil {
		return false, storeFailure(err)
	}

	if err := s.attempts.Record(ctx, &domain.LimitAttempt{
		IPAddress: key.IP,
		Login:     key.Login,
		Endpoint:  key.Endpoint,
		AttemptAt: now,
	}); err != nil {
		return false, storeFailure(err)
	}

	if count >= maxAttempts {
		s.logger.Warn("rate limit exceeded",
			zap.String("ip", key.IP),
			zap.String("endpoint", key.Endpoint))
		return false, nil
	}

	return true, nil
}
