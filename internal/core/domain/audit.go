package domain

import "time"

// AuditAction identifies what happened in an audit event.
type AuditAction string

const (
	AuditUserRegistered AuditAction = "user_registered"
	AuditUserLoggedIn   AuditAction = "user_logged_in"
	AuditTaskCreated    AuditAction = "task_created"
	AuditTaskUpdated    AuditAction = "task_updated"
	AuditTaskDeleted    AuditAction = "task_deleted"
)

// AuditEvent records a single security-relevant action. Events are written
// asynchronously and are append-only; nothing in the request path ever reads
// them back.
type AuditEvent struct {
	ID        string      `json:"id,omitempty"`
	ActorID   string      `json:"actor_id"`
	Action    AuditAction `json:"action"`
	SubjectID string      `json:"subject_id,omitempty"`
	At        time.Time   `json:"at"`
}
