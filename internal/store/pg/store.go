// Package pg implementa repository.Store sobre PostgreSQL (pgx/v5).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct{ pool *pgxpool.Pool }

// PoolConfig ajusta pgxpool. Los ceros dejan los defaults de pgx.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// InitRetries/InitRetryDelay controlan el ping inicial.
	InitRetries    int
	InitRetryDelay time.Duration
}

// Open crea el pool y espera a que la base responda, reintentando
// InitRetries veces con InitRetryDelay entre intentos.
func Open(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// MaxIdleConns → MinConns (pgxpool no distingue idle)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if pcfg.MinConns > pcfg.MaxConns {
		pcfg.MinConns = pcfg.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}

	attempts := cfg.InitRetries
	if attempts < 1 {
		attempts = 1
	}
	log := logger.From(ctx).With(logger.Layer("store"), logger.Component("pg"))
	for i := 1; ; i++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if i >= attempts {
			pool.Close()
			return nil, fmt.Errorf("pg: ping after %d attempts: %w", i, err)
		}
		log.Warn("database not ready, retrying", logger.Attempt(i), logger.Err(err))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.InitRetryDelay):
		}
	}
	log.Info("pg pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))

	return &Store{pool: pool}, nil
}

// NewFromPool envuelve un pool existente (tests).
func NewFromPool(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Pool expone el pool para migraciones y métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Principals() repository.PrincipalRepository { return &principalRepo{pool: s.pool} }
func (s *Store) Sessions() repository.SessionLedger         { return &ledger{pool: s.pool} }
func (s *Store) Programs() repository.ProgramRepository     { return &programRepo{pool: s.pool} }
func (s *Store) Documents() repository.DocumentRepository   { return &documentRepo{pool: s.pool} }
func (s *Store) Tasks() repository.TaskRepository           { return &taskRepo{pool: s.pool} }

var _ repository.Store = (*Store)(nil)

// inTx corre fn en una transacción propia. El Rollback diferido libera la
// conexión en cualquier salida; después de Commit es no-op.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pg: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pg: commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
