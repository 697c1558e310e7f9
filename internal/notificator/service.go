package notificator

import (
	"context"

	"go.uber.org/zap"
)

type Service struct {
	infra Notificator
	log   *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	return &Service{infra: infra, log: log}
}

// Notify не возвращает ошибку доставки наверх: алерт не должен ломать основной поток
func (s *Service) Notify(ctx context.Context, err error, details string) error {
	if sendErr := s.infra.Notify(ctx, err, details); sendErr != nil {
		s.log.Warn("alert delivery failed", zap.Error(sendErr), zap.NamedError("alert", err))
	}
	return nil
}
