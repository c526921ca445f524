package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// TaskRepository persists tasks. Lookups are by id only; ownership is
// enforced one layer up, in the task service.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}
