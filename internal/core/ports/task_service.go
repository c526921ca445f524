package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
}

// UpdateTaskInput carries a partial update: nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskService exposes owner-scoped task CRUD. Every operation takes the id
// of the authenticated principal; a task that exists but belongs to someone
// else is reported as domain.ErrTaskNotFound, never as a distinct
// "forbidden", so resource existence is not leaked across owners.
type TaskService interface {
	Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id string, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}
