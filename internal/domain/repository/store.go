package repository

import "context"

// Store agrupa los repositorios de un backend de almacenamiento.
type Store interface {
	Principals() PrincipalRepository
	Sessions() SessionLedger
	Programs() ProgramRepository
	Documents() DocumentRepository
	Tasks() TaskRepository

	// Ping verifica conectividad (readyz).
	Ping(ctx context.Context) error
	Close()
}
