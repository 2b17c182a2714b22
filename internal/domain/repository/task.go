package repository

import (
	"context"
	"time"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

type TaskAction string

const (
	ActionIngest TaskAction = "ingest"
	ActionDelete TaskAction = "delete"
)

// ProgramTask sigue una operación en background sobre un programa.
type ProgramTask struct {
	ID          int64
	TaskID      string
	SessionID   string
	ProgramName string
	ProgramID   *int64
	Action      TaskAction
	Status      TaskStatus
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type CreateTaskInput struct {
	TaskID      string
	SessionID   string
	ProgramName string
	Action      TaskAction
}

// TaskUpdate cambia el estado. CompletedAt se setea al pasar a completed o failed.
type TaskUpdate struct {
	Status    TaskStatus
	ProgramID *int64
	Error     *string
}

type TaskRepository interface {
	Create(ctx context.Context, in CreateTaskInput) (*ProgramTask, error)
	// Get retorna ErrNotFound si el task_id no existe.
	Get(ctx context.Context, taskID string) (*ProgramTask, error)
	Update(ctx context.Context, taskID string, upd TaskUpdate) error
}

// IsTerminal indica si el estado ya no cambia.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}
