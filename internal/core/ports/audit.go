package ports

import (
	"context"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// AuditFilter narrows the audit listing.
type AuditFilter struct {
	Username string
	Type     domain.AuthEventType
	Limit    int
}

// AuditRepository persists the authentication audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuthEvent) error
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuthEvent, error)
}

// AuditRecorder accepts events for asynchronous persistence. Record must not
// block the caller on storage.
type AuditRecorder interface {
	Record(e domain.AuthEvent)
}

// AuditService persists and lists audit events.
type AuditService interface {
	Process(ctx context.Context, e domain.AuthEvent) error
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuthEvent, error)
}
