package programs

import (
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

// TaskResponse es el estado de una operación en background.
type TaskResponse struct {
	TaskID        string     `json:"task_id"`
	SessionID     string     `json:"session_id"`
	ProgramName   string     `json:"program_name"`
	ProgramID     *int64     `json:"program_id"`
	ProgramAction string     `json:"program_action"`
	Status        string     `json:"status"`
	Error         *string    `json:"error"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// NewTaskResponse mapea el modelo de dominio al DTO.
func NewTaskResponse(t *repository.ProgramTask) TaskResponse {
	return TaskResponse{
		TaskID:        t.TaskID,
		SessionID:     t.SessionID,
		ProgramName:   t.ProgramName,
		ProgramID:     t.ProgramID,
		ProgramAction: string(t.Action),
		Status:        string(t.Status),
		Error:         t.Error,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}
