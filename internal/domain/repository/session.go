package repository

import (
	"context"
	"time"
)

// RefreshSession es una fila del ledger de refresh tokens. Las filas nunca
// se borran: sólo pasan de revoked=false a revoked=true.
type RefreshSession struct {
	ID         int64
	TokenID    string // jti; nunca se expone por HTTP
	UserID     int64
	ExpiresAt  time.Time
	CreatedAt  time.Time
	Revoked    bool
	DeviceInfo *string
	IPAddress  *string
}

type InsertSessionInput struct {
	TokenID    string
	UserID     int64
	ExpiresAt  time.Time
	DeviceInfo string
	IPAddress  string
}

// SessionLedger registra qué refresh tokens siguen vigentes.
// Cada llamada corre en su propia transacción.
type SessionLedger interface {
	// Insert crea una fila activa. ErrConflict si el TokenID ya existe.
	Insert(ctx context.Context, in InsertSessionInput) (*RefreshSession, error)

	// FindActive retorna la fila sólo si existe, no está revocada y
	// expires_at > now. En cualquier otro caso ErrNotFound.
	FindActive(ctx context.Context, tokenID string) (*RefreshSession, error)

	// Revoke marca revoked=true. Es idempotente: un id ausente o ya
	// revocado no es error.
	Revoke(ctx context.Context, tokenID string) error

	// RevokeAll revoca en un único statement todas las filas activas del
	// usuario y retorna cuántas cambiaron.
	RevokeAll(ctx context.Context, userID int64) (int, error)

	// ListActive retorna las filas no revocadas y no expiradas, más nuevas primero.
	ListActive(ctx context.Context, userID int64) ([]RefreshSession, error)
}
