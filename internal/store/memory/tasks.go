package memory

import (
	"context"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(ctx context.Context, in repository.CreateTaskInput) (*repository.ProgramTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[in.TaskID]; ok {
		return nil, repository.ErrConflict
	}
	r.s.nextTaskID++
	t := &repository.ProgramTask{
		ID:          r.s.nextTaskID,
		TaskID:      in.TaskID,
		SessionID:   in.SessionID,
		ProgramName: in.ProgramName,
		Action:      in.Action,
		Status:      repository.TaskPending,
		CreatedAt:   r.s.now().UTC(),
	}
	r.s.tasks[in.TaskID] = t
	return copyTask(t), nil
}

func (r *taskRepo) Get(ctx context.Context, taskID string) (*repository.ProgramTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTask(t), nil
}

func (r *taskRepo) Update(ctx context.Context, taskID string, upd repository.TaskUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = upd.Status
	if upd.ProgramID != nil {
		id := *upd.ProgramID
		t.ProgramID = &id
	}
	if upd.Error != nil {
		e := *upd.Error
		t.Error = &e
	}
	if upd.Status.IsTerminal() {
		now := r.s.now().UTC()
		t.CompletedAt = &now
	}
	return nil
}

func copyTask(t *repository.ProgramTask) *repository.ProgramTask {
	cp := *t
	if t.ProgramID != nil {
		id := *t.ProgramID
		cp.ProgramID = &id
	}
	if t.Error != nil {
		e := *t.Error
		cp.Error = &e
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		cp.CompletedAt = &c
	}
	return &cp
}
