package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

type stubTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
	next  int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	clone := *task
	clone.ID = "task-" + strconv.Itoa(r.next)
	r.tasks[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		out := *t
		return &out, nil
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	r.tasks[task.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func TestTaskService_Create(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil)

	task, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "t1", Description: "d"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != domain.TaskPending {
		t.Fatalf("expected new task to be PENDING, got %s", task.Status)
	}
	if task.OwnerID != "owner-1" {
		t.Fatalf("unexpected owner: %s", task.OwnerID)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil)

	if _, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: ""}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty title, got %v", err)
	}
}

func TestTaskService_Get_OtherOwner(t *testing.T) {
	// A task owned by someone else reads exactly like a missing one.
	svc := NewTaskService(newStubTaskRepo(), nil)

	task, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "t1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "owner-2", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-1", "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for missing id, got %v", err)
	}
}

func TestTaskService_List_ScopedToOwner(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil)

	if _, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "mine"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-2", ports.CreateTaskInput{Title: "theirs"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "mine" {
		t.Fatalf("expected only owner-1 tasks, got %+v", tasks)
	}
}

func TestTaskService_Update_Partial(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil)

	task, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "t1", Description: "keep"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := string(domain.TaskCompleted)
	updated, err := svc.Update(context.Background(), "owner-1", task.ID, ports.UpdateTaskInput{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.TaskCompleted {
		t.Fatalf("expected COMPLETED, got %s", updated.Status)
	}
	if updated.Title != "t1" || updated.Description != "keep" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestTaskService_Update_InvalidStatus(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil)

	task, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "t1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "DONE"
	if _, err := svc.Update(context.Background(), "owner-1", task.ID, ports.UpdateTaskInput{Status: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}

	empty := ""
	if _, err := svc.Update(context.Background(), "owner-1", task.ID, ports.UpdateTaskInput{Title: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty title, got %v", err)
	}
}

func TestTaskService_Update_OtherOwner(t *testing.T) {
	svc := NewTaskService(newStubTaskRepo(), nil)

	task, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "t1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "hijack"
	if _, err := svc.Update(context.Background(), "owner-2", task.ID, ports.UpdateTaskInput{Title: &title}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	repo := newStubTaskRepo()
	recorder := &stubRecorder{}
	svc := NewTaskService(repo, recorder)

	task, err := svc.Create(context.Background(), "owner-1", ports.CreateTaskInput{Title: "t1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "owner-2", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-1", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-1", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected task gone after delete, got %v", err)
	}

	actions := recorder.actions()
	if len(actions) != 2 || actions[1] != domain.AuditTaskDeleted {
		t.Fatalf("expected task_deleted audit event, got %v", actions)
	}
}
