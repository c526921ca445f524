package handler

import (
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
)

// --- Request / Response types ---

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// updateTaskRequest is a partial update: absent fields leave the task
// untouched.
type updateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
}

// taskResponse is the transport shape of a task. Kept separate from the
// domain type so the JSON contract is not coupled to internal changes.
type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}
