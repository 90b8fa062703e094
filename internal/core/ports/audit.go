package ports

import (
	"context"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

// AuditRecorder accepts one auth outcome for the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
