// Package memory implements in-memory repositories for development and
// testing. All stores are safe for concurrent use and mirror the semantics
// of the MongoDB implementations, including duplicate detection.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// Ensure interfaces are met.
var (
	_ ports.UserRepository = (*UserStore)(nil)
	_ ports.TaskRepository = (*TaskStore)(nil)
	_ ports.AuditStore     = (*AuditStore)(nil)
)

// --- UserStore ---

// UserStore is an in-memory credential store. The mutex makes the
// uniqueness check and the insert atomic, matching the duplicate-key
// guarantee of the MongoDB repository.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by id
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrDuplicateUser
		}
	}

	clone := *user
	clone.ID = uuid.NewString()
	s.users[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Delete removes a user. Not part of ports.UserRepository; tests use it to
// simulate a principal that vanished after its token was issued.
func (s *UserStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// --- TaskStore ---

// TaskStore is an in-memory task repository.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task // keyed by id
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*domain.Task)}
}

func (s *TaskStore) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *task
	clone.ID = uuid.NewString()
	s.tasks[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (s *TaskStore) FindByID(_ context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (s *TaskStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]domain.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *TaskStore) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	s.tasks[task.ID] = &clone

	out := clone
	return &out, nil
}

func (s *TaskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// --- AuditStore ---

// AuditStore is an in-memory append-only audit log.
type AuditStore struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Insert(_ context.Context, event *domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *event
	clone.ID = uuid.NewString()
	s.events = append(s.events, clone)
	return nil
}

func (s *AuditStore) ListRecent(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AuditEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
