package repository

import (
	"context"
	"time"
)

// Program es un documento fuente subido (p.ej. un programa electoral).
type Program struct {
	ID        int64
	Name      string
	FilePath  string
	CreatedAt time.Time
}

type ProgramRepository interface {
	// GetByName retorna ErrNotFound si no existe.
	GetByName(ctx context.Context, name string) (*Program, error)
	// Create retorna ErrConflict si el nombre ya existe.
	Create(ctx context.Context, name, filePath string) (*Program, error)
	List(ctx context.Context) ([]Program, error)
	// Delete borra el programa; ErrNotFound si no existe.
	Delete(ctx context.Context, name string) error
}

// Document es una página indexada de un programa.
type Document struct {
	ID          int64
	ProgramName string
	Page        int
	Content     string
	CreatedAt   time.Time
}

// ScoredDocument es un resultado de búsqueda con su relevancia.
type ScoredDocument struct {
	Document
	Score float64
}

type DocumentRepository interface {
	CountByProgram(ctx context.Context, program string) (int, error)
	// InsertPages guarda las páginas (índice base 1) en una transacción.
	InsertPages(ctx context.Context, program string, pages []string) (int, error)
	DeleteByProgram(ctx context.Context, program string) (int, error)
	// Search retorna hasta limit documentos del programa ordenados por relevancia.
	Search(ctx context.Context, program, query string, limit int) ([]ScoredDocument, error)
}
