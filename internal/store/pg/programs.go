package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type programRepo struct{ pool *pgxpool.Pool }

func (r *programRepo) GetByName(ctx context.Context, name string) (*repository.Program, error) {
	const q = `SELECT id, name, file_path, created_at FROM programs WHERE name = $1`
	var p repository.Program
	err := r.pool.QueryRow(ctx, q, name).Scan(&p.ID, &p.Name, &p.FilePath, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get program: %w", err)
	}
	return &p, nil
}

func (r *programRepo) Create(ctx context.Context, name, filePath string) (*repository.Program, error) {
	const q = `
		INSERT INTO programs (name, file_path) VALUES ($1, $2)
		RETURNING id, name, file_path, created_at`
	var p repository.Program
	err := r.pool.QueryRow(ctx, q, name, filePath).Scan(&p.ID, &p.Name, &p.FilePath, &p.CreatedAt)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: create program: %w", err)
	}
	return &p, nil
}

func (r *programRepo) List(ctx context.Context) ([]repository.Program, error) {
	const q = `SELECT id, name, file_path, created_at FROM programs ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("pg: list programs: %w", err)
	}
	defer rows.Close()

	out := make([]repository.Program, 0)
	for rows.Next() {
		var p repository.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.FilePath, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("pg: scan program: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *programRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("pg: delete program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type documentRepo struct{ pool *pgxpool.Pool }

func (r *documentRepo) CountByProgram(ctx context.Context, program string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE program_name = $1`, program).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pg: count documents: %w", err)
	}
	return n, nil
}

func (r *documentRepo) InsertPages(ctx context.Context, program string, pages []string) (int, error) {
	if len(pages) == 0 {
		return 0, nil
	}
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows := make([][]any, len(pages))
		for i, content := range pages {
			rows[i] = []any{program, i + 1, content}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"documents"},
			[]string{"program_name", "page", "content"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("pg: copy documents: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

func (r *documentRepo) DeleteByProgram(ctx context.Context, program string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE program_name = $1`, program)
	if err != nil {
		return 0, fmt.Errorf("pg: delete documents: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Search rankea con ts_rank sobre content_tsv. Los términos se combinan con
// "or" para que una pregunta en lenguaje natural no exija todas las palabras.
func (r *documentRepo) Search(ctx context.Context, program, query string, limit int) ([]repository.ScoredDocument, error) {
	ws := orQuery(query)
	out := make([]repository.ScoredDocument, 0)
	if ws == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = 5
	}
	const q = `
		SELECT d.id, d.program_name, d.page, d.content, d.created_at, ts_rank(d.content_tsv, q) AS score
		FROM documents d, websearch_to_tsquery('simple', $2) q
		WHERE d.program_name = $1 AND d.content_tsv @@ q
		ORDER BY score DESC, d.page ASC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, q, program, ws, limit)
	if err != nil {
		return nil, fmt.Errorf("pg: search documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d repository.ScoredDocument
		var score float32
		if err := rows.Scan(&d.ID, &d.ProgramName, &d.Page, &d.Content, &d.CreatedAt, &score); err != nil {
			return nil, fmt.Errorf("pg: scan document: %w", err)
		}
		d.Score = float64(score)
		out = append(out, d)
	}
	return out, rows.Err()
}

func orQuery(q string) string {
	words := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= 3 && w != "or" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " or ")
}
