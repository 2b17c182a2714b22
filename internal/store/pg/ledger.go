package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledger implementa repository.SessionLedger sobre refresh_tokens.
// Cada método abre y cierra su propia transacción.
type ledger struct{ pool *pgxpool.Pool }

const sessionColumns = `id, token, user_id, expires_at, created_at, revoked, device_info, ip_address`

func scanSession(row pgx.Row) (*repository.RefreshSession, error) {
	var s repository.RefreshSession
	if err := row.Scan(&s.ID, &s.TokenID, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.Revoked, &s.DeviceInfo, &s.IPAddress); err != nil {
		return nil, err
	}
	return &s, nil
}

func (l *ledger) Insert(ctx context.Context, in repository.InsertSessionInput) (*repository.RefreshSession, error) {
	if in.TokenID == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `
		INSERT INTO refresh_tokens (token, user_id, expires_at, device_info, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns

	var out *repository.RefreshSession
	err := inTx(ctx, l.pool, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx, q,
			in.TokenID, in.UserID, in.ExpiresAt, nullIfEmpty(in.DeviceInfo), nullIfEmpty(in.IPAddress),
		))
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("pg: insert session: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *ledger) FindActive(ctx context.Context, tokenID string) (*repository.RefreshSession, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM refresh_tokens
		WHERE token = $1 AND NOT revoked AND expires_at > NOW()`

	var out *repository.RefreshSession
	err := inTx(ctx, l.pool, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx, q, tokenID))
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("pg: find session: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *ledger) Revoke(ctx context.Context, tokenID string) error {
	const q = `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`
	return inTx(ctx, l.pool, func(tx pgx.Tx) error {
		// 0 filas afectadas no es error: revocar es idempotente
		if _, err := tx.Exec(ctx, q, tokenID); err != nil {
			return fmt.Errorf("pg: revoke session: %w", err)
		}
		return nil
	})
}

func (l *ledger) RevokeAll(ctx context.Context, userID int64) (int, error) {
	const q = `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`
	var n int
	err := inTx(ctx, l.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, userID)
		if err != nil {
			return fmt.Errorf("pg: revoke all sessions: %w", err)
		}
		n = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (l *ledger) ListActive(ctx context.Context, userID int64) ([]repository.RefreshSession, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM refresh_tokens
		WHERE user_id = $1 AND NOT revoked AND expires_at > NOW()
		ORDER BY created_at DESC, id DESC`

	out := make([]repository.RefreshSession, 0)
	err := inTx(ctx, l.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, q, userID)
		if err != nil {
			return fmt.Errorf("pg: list sessions: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSession(rows)
			if err != nil {
				return fmt.Errorf("pg: scan session: %w", err)
			}
			out = append(out, *s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
