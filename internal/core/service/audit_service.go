package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codeplatform/auth-service/internal/api/metrics"
	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

// AuditService persists auth outcomes for the audit trail. Failures are
// logged and returned but never affect the request that produced the event.
type AuditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (s *AuditService) Record(ctx context.Context, event domain.AuditEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		s.log.Error().Err(err).
			Str("action", event.Action).
			Str("email", event.Email).
			Msg("audit event not recorded")
		return fmt.Errorf("record audit event: %w", err)
	}
	metrics.AuditEventsRecordedTotal.WithLabelValues(event.Action).Inc()
	return nil
}
