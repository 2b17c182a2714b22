package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type taskRepo struct{ pool *pgxpool.Pool }

const taskColumns = `id, task_id::text, session_id, program_name, program_id, program_action, status, error, created_at, completed_at`

func scanTask(row pgx.Row) (*repository.ProgramTask, error) {
	var t repository.ProgramTask
	var action, status string
	if err := row.Scan(&t.ID, &t.TaskID, &t.SessionID, &t.ProgramName, &t.ProgramID,
		&action, &status, &t.Error, &t.CreatedAt, &t.CompletedAt); err != nil {
		return nil, err
	}
	t.Action = repository.TaskAction(action)
	t.Status = repository.TaskStatus(status)
	return &t, nil
}

func (r *taskRepo) Create(ctx context.Context, in repository.CreateTaskInput) (*repository.ProgramTask, error) {
	const q = `
		INSERT INTO program_tasks (task_id, session_id, program_name, program_action, status)
		VALUES ($1::uuid, $2, $3, $4, 'pending')
		RETURNING ` + taskColumns
	t, err := scanTask(r.pool.QueryRow(ctx, q, in.TaskID, in.SessionID, in.ProgramName, string(in.Action)))
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: create task: %w", err)
	}
	return t, nil
}

func (r *taskRepo) Get(ctx context.Context, taskID string) (*repository.ProgramTask, error) {
	const q = `SELECT ` + taskColumns + ` FROM program_tasks WHERE task_id::text = $1`
	t, err := scanTask(r.pool.QueryRow(ctx, q, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get task: %w", err)
	}
	return t, nil
}

func (r *taskRepo) Update(ctx context.Context, taskID string, upd repository.TaskUpdate) error {
	const q = `
		UPDATE program_tasks SET
			status = $2,
			program_id = COALESCE($3, program_id),
			error = COALESCE($4, error),
			completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN NOW() ELSE completed_at END
		WHERE task_id::text = $1`
	tag, err := r.pool.Exec(ctx, q, taskID, string(upd.Status), upd.ProgramID, upd.Error)
	if err != nil {
		return fmt.Errorf("pg: update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
