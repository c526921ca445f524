package service

import (
	"context"
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// TaskService implements owner-scoped task CRUD. A task belonging to a
// different owner is reported as domain.ErrTaskNotFound so that callers
// cannot probe for the existence of other users' tasks.
type TaskService struct {
	tasks ports.TaskRepository
	audit ports.AuditRecorder
}

// NewTaskService wires the task service. audit may be nil.
func NewTaskService(tasks ports.TaskRepository, audit ports.AuditRecorder) *TaskService {
	return &TaskService{tasks: tasks, audit: audit}
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	if ownerID == "" || in.Title == "" {
		return nil, domain.ErrValidation
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskPending,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{ActorID: ownerID, Action: domain.AuditTaskCreated, SubjectID: created.ID, At: now})
	return created, nil
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrValidation
	}
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.owned(ctx, ownerID, id)
}

// Update applies a partial update: only non-nil fields change. An unknown
// status value is rejected before anything is written.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, domain.ErrValidation
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		status := domain.TaskStatus(*in.Status)
		if !status.Valid() {
			return nil, domain.ErrValidation
		}
		task.Status = status
	}
	task.UpdatedAt = time.Now().UTC()

	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{ActorID: ownerID, Action: domain.AuditTaskUpdated, SubjectID: id, At: task.UpdatedAt})
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.record(domain.AuditEvent{ActorID: ownerID, Action: domain.AuditTaskDeleted, SubjectID: id, At: time.Now().UTC()})
	return nil
}

// owned fetches a task and enforces ownership. Missing and unowned collapse
// into the same not-found result.
func (s *TaskService) owned(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if ownerID == "" || id == "" {
		return nil, domain.ErrTaskNotFound
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}
