package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// openDB adapta el pool pgx a *sql.DB, que es lo que goose consume.
func openDB(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("migrations: dialect: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Up aplica todas las migraciones pendientes.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openDB(pool)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down revierte la última migración aplicada.
func Down(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openDB(pool)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

// Status imprime el estado de cada migración con el logger de goose.
func Status(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openDB(pool)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.StatusContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: status: %w", err)
	}
	return nil
}
