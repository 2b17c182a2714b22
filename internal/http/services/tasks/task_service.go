// Package tasks expone el estado de los jobs de programas.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/programs"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService interface {
	Get(ctx context.Context, taskID string) (*dto.TaskResponse, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Get(ctx context.Context, taskID string) (*dto.TaskResponse, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, ErrTaskNotFound
	}
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	resp := dto.NewTaskResponse(t)
	return &resp, nil
}
