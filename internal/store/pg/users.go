package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type principalRepo struct{ pool *pgxpool.Pool }

const principalColumns = `id, username, email, full_name, disabled, hashed_password, created_at`

func (r *principalRepo) GetByUsername(ctx context.Context, username string) (*repository.Principal, error) {
	const q = `SELECT ` + principalColumns + ` FROM users WHERE username = $1`
	var p repository.Principal
	err := r.pool.QueryRow(ctx, q, username).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.Disabled, &p.HashedPassword, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user: %w", err)
	}
	return &p, nil
}

func (r *principalRepo) Create(ctx context.Context, in repository.CreatePrincipalInput) (*repository.Principal, error) {
	if in.Username == "" || in.HashedPassword == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `
		INSERT INTO users (username, email, full_name, disabled, hashed_password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + principalColumns
	var p repository.Principal
	err := r.pool.QueryRow(ctx, q, in.Username, in.Email, in.FullName, in.Disabled, in.HashedPassword).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.Disabled, &p.HashedPassword, &p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: create user: %w", err)
	}
	return &p, nil
}
