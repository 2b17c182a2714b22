package repository

import (
	"context"
	"time"
)

// Principal es una cuenta autenticable. El hash nunca sale de la capa de servicio.
type Principal struct {
	ID             int64
	Username       string
	Email          string
	FullName       string
	Disabled       bool
	HashedPassword string
	CreatedAt      time.Time
}

type CreatePrincipalInput struct {
	Username       string
	Email          string
	FullName       string
	Disabled       bool
	HashedPassword string
}

// PrincipalRepository es de sólo lectura para el flujo de autenticación;
// Create existe para el seed por CLI.
type PrincipalRepository interface {
	// GetByUsername retorna ErrNotFound si el handle no existe.
	GetByUsername(ctx context.Context, username string) (*Principal, error)

	// Create retorna ErrConflict si username o email ya existen.
	Create(ctx context.Context, in CreatePrincipalInput) (*Principal, error)
}
