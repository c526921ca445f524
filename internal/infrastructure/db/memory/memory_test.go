package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
)

func TestUserStore_DuplicateDetection(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	created, err := store.Create(ctx, &domain.User{Username: "alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := store.Create(ctx, &domain.User{Username: "alice", Email: "other@x.com"}); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser for username, got %v", err)
	}
	if _, err := store.Create(ctx, &domain.User{Username: "other", Email: "alice@x.com"}); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser for email, got %v", err)
	}
}

func TestUserStore_ConcurrentRegistration(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	var successes atomic.Int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, &domain.User{Username: "alice", Email: "alice@x.com"})
			switch {
			case err == nil:
				successes.Add(1)
			case !errors.Is(err, domain.ErrDuplicateUser):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := successes.Load(); n != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", n)
	}
}

func TestUserStore_Lookups(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	created, err := store.Create(ctx, &domain.User{Username: "alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byName, err := store.FindByUsername(ctx, "alice")
	if err != nil || byName.ID != created.ID {
		t.Fatalf("find by username: %v %+v", err, byName)
	}
	byID, err := store.FindByID(ctx, created.ID)
	if err != nil || byID.Username != "alice" {
		t.Fatalf("find by id: %v %+v", err, byID)
	}

	if _, err := store.FindByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	store.Delete(created.ID)
	if _, err := store.FindByID(ctx, created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	created, err := store.Create(ctx, &domain.User{Username: "alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Username = "mutated"
	fresh, err := store.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if fresh.Username != "alice" {
		t.Fatalf("store leaked internal state: %+v", fresh)
	}
}

func TestTaskStore_CRUD(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	created, err := store.Create(ctx, &domain.Task{Title: "t1", Status: domain.TaskPending, OwnerID: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	created.Status = domain.TaskCompleted
	updated, err := store.Update(ctx, created)
	if err != nil || updated.Status != domain.TaskCompleted {
		t.Fatalf("update: %v %+v", err, updated)
	}

	if _, err := store.Update(ctx, &domain.Task{ID: "missing"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
	if _, err := store.FindByID(ctx, created.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
}

func TestTaskStore_ListByOwner(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()
	now := time.Now()

	for i, tc := range []struct {
		title string
		owner string
		age   time.Duration
	}{
		{"old", "alice", 2 * time.Hour},
		{"new", "alice", time.Hour},
		{"other", "bob", 0},
	} {
		_, err := store.Create(ctx, &domain.Task{
			Title:     tc.title,
			OwnerID:   tc.owner,
			CreatedAt: now.Add(-tc.age),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	tasks, err := store.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "new" || tasks[1].Title != "old" {
		t.Fatalf("expected newest first, got %s then %s", tasks[0].Title, tasks[1].Title)
	}

	empty, err := store.ListByOwner(ctx, "carol")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v %v", empty, err)
	}
}

func TestAuditStore_ListRecent(t *testing.T) {
	store := NewAuditStore()
	ctx := context.Background()

	actions := []domain.AuditAction{
		domain.AuditUserRegistered,
		domain.AuditTaskCreated,
		domain.AuditTaskDeleted,
	}
	for _, a := range actions {
		if err := store.Insert(ctx, &domain.AuditEvent{ActorID: "alice", Action: a, At: time.Now()}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	events, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Action != domain.AuditTaskDeleted || events[2].Action != domain.AuditUserRegistered {
		t.Fatalf("expected newest first, got %+v", events)
	}

	capped, err := store.ListRecent(ctx, 2)
	if err != nil || len(capped) != 2 {
		t.Fatalf("expected limit to apply, got %d events (%v)", len(capped), err)
	}
	if capped[0].Action != domain.AuditTaskDeleted {
		t.Fatalf("limit must keep the newest events: %+v", capped)
	}
}
