package infra

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer пишет ссылку подтверждения в лог вместо отправки письма.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(_ context.Context, email, link string) error {
	m.log.Info("verification link", zap.String("email", email), zap.String("link", link))
	return nil
}
