package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log, now: time.Now}
}

// Process persists a single authentication event.
func (s *auditService) Process(ctx context.Context, e domain.AuthEvent) error {
	if e.Type == "" {
		return fmt.Errorf("process audit event: %w: missing type", domain.ErrInvalidInput)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}

	if err := s.repo.Insert(ctx, &e); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("type", string(e.Type)).
		Str("username", e.Username).
		Msg("audit event stored")
	return nil
}

// List returns the newest events first.
func (s *auditService) List(ctx context.Context, f ports.AuditFilter) ([]*domain.AuthEvent, error) {
	if f.Limit <= 0 {
		f.Limit = defaultAuditLimit
	}
	if f.Limit > maxAuditLimit {
		f.Limit = maxAuditLimit
	}
	events, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
