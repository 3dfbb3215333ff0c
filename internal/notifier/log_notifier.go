package notifier

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier stands in for SMTP in development: codes only reach the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendConfirmationCode(_ context.Context, email, code string) error {
	n.logger.Info("confirmation code issued",
		zap.String("email", email),
		zap.String("code", code))
	return nil
}

func (n *LogNotifier) SendRecoveryCode(_ context.Context, email, code string) error {
	n.logger.Info("recovery code issued",
		zap.String("email", email),
		zap.String("code", code))
	return nil
}
