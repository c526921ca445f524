package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by both Register and Login: a freshly issued
// bearer token plus the resolved user.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}
