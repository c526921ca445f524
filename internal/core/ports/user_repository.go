package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce
// username and email uniqueness atomically with the insert and report a
// conflicting insert as domain.ErrDuplicateUser.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
