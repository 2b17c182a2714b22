package programs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

// ErrNoContent: el archivo no tiene ninguna página con texto.
var ErrNoContent = errors.New("program has no extractable text")

// Indexer llena y vacía la colección de documentos de un programa.
type Indexer struct {
	docs      repository.DocumentRepository
	extractor Extractor
}

func NewIndexer(docs repository.DocumentRepository, extractor Extractor) *Indexer {
	if extractor == nil {
		extractor = TextExtractor{}
	}
	return &Indexer{docs: docs, extractor: extractor}
}

// Index extrae e inserta las páginas del programa. Si ya hay documentos no
// hace nada y devuelve la cantidad existente.
func (ix *Indexer) Index(ctx context.Context, p *repository.Program) (int, error) {
	n, err := ix.docs.CountByProgram(ctx, p.Name)
	if err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	if n > 0 {
		return n, nil
	}

	pages, err := ix.extractor.Extract(ctx, p.FilePath)
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, ErrNoContent
	}
	n, err = ix.docs.InsertPages(ctx, p.Name, pages)
	if err != nil {
		return 0, fmt.Errorf("index: insert: %w", err)
	}
	return n, nil
}

// Drop borra todos los documentos del programa.
func (ix *Indexer) Drop(ctx context.Context, program string) (int, error) {
	n, err := ix.docs.DeleteByProgram(ctx, program)
	if err != nil {
		return 0, fmt.Errorf("drop: %w", err)
	}
	return n, nil
}
