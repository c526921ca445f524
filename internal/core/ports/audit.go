package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// AuditRecorder accepts audit events for asynchronous persistence. Record
// must not block the request path beyond enqueueing.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditStore is the persistence side of the audit trail.
type AuditStore interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
