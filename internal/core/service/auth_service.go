package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
	"github.com/taskhive/task-api/internal/core/security"
	"github.com/taskhive/task-api/internal/core/token"
)

// AuthService implements registration and login on top of the credential
// store, the password hasher and the token issuer.
type AuthService struct {
	users    ports.UserRepository
	hasher   security.PasswordHasher
	issuer   *token.Issuer
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	logger   zerolog.Logger
}

// NewAuthService wires the auth service. throttle and audit may be nil,
// in which case throttling and audit recording are skipped.
func NewAuthService(
	users ports.UserRepository,
	hasher security.PasswordHasher,
	issuer *token.Issuer,
	throttle ports.LoginThrottle,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		issuer:   issuer,
		throttle: throttle,
		audit:    audit,
		logger:   logger,
	}
}

// Register creates a new USER account and issues a token for it. A
// conflicting username or email surfaces as domain.ErrDuplicateUser; the
// uniqueness check and the insert are atomic in the repository, so two
// concurrent registrations with the same username cannot both succeed.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Username == "" || in.Email == "" || len(in.Password) < 6 {
		return nil, domain.ErrValidation
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	tkn, err := s.issuer.Issue(created.ID)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{ActorID: created.ID, Action: domain.AuditUserRegistered, At: now})
	return &ports.AuthResult{Token: tkn, User: created}, nil
}

// Login verifies the credentials and issues a fresh token. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if blocked := s.blocked(ctx, username); blocked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.noteFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.noteFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("throttle reset failed")
		}
	}

	tkn, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{ActorID: user.ID, Action: domain.AuditUserLoggedIn, At: time.Now().UTC()})
	return &ports.AuthResult{Token: tkn, User: user}, nil
}

// blocked asks the throttle whether username is locked out. Throttle
// failures never block logins; they are logged and ignored.
func (s *AuthService) blocked(ctx context.Context, username string) bool {
	if s.throttle == nil {
		return false
	}
	blocked, err := s.throttle.Blocked(ctx, username)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("throttle check failed")
		return false
	}
	return blocked
}

func (s *AuthService) noteFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("throttle record failed")
	}
}

func (s *AuthService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}
