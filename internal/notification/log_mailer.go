package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of delivering them. Useful
// in development when no SMTP credentials are configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger ...*zap.Logger) *LogMailer {
	l := zap.L().Named("notification.log_mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.log_mailer")
	}
	return &LogMailer{logger: l}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("email (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}
