package programs

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	tasksvc "github.com/dropDatabas3/wahlbot/internal/http/services/tasks"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// TaskController maneja GET /tasks/{task_id}.
type TaskController struct {
	service tasksvc.TaskService
}

func NewTaskController(service tasksvc.TaskService) *TaskController {
	return &TaskController{service: service}
}

func (c *TaskController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "task_id")

	task, err := c.service.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, tasksvc.ErrTaskNotFound) {
			logger.From(ctx).Debug("task not found", logger.TaskID(taskID))
			httperrors.WriteError(w, httperrors.ErrTaskNotFound)
			return
		}
		logger.From(ctx).Error("get task failed", logger.TaskID(taskID), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, task)
}
