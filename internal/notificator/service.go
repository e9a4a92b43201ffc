package notificator

import (
	"context"

	"github.com/Vovarama1992/go-utils/logger"
)

// Service always logs the alert and forwards it to infra when one is configured.
type Service struct {
	infra Notificator
	log   *logger.ZapLogger
}

func NewService(infra Notificator, log *logger.ZapLogger) *Service {
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	s.log.Log(logger.LogEntry{Level: "error", Message: "alert: " + details, Service: "notificator", Error: err})

	if s.infra == nil {
		return nil
	}
	if sendErr := s.infra.Notify(ctx, err, details); sendErr != nil {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "failed to deliver alert", Service: "notificator", Error: sendErr})
		return sendErr
	}
	return nil
}
