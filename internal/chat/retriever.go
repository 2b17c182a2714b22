package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

// Retriever devuelve los pasajes más relevantes de un programa.
type Retriever interface {
	Retrieve(ctx context.Context, program, query string, limit int) ([]repository.ScoredDocument, error)
}

// DocumentRetriever delega en el DocumentRepository (full-text en Postgres,
// solapamiento de términos en memoria).
type DocumentRetriever struct {
	docs repository.DocumentRepository
}

func NewDocumentRetriever(docs repository.DocumentRepository) *DocumentRetriever {
	return &DocumentRetriever{docs: docs}
}

func (r *DocumentRetriever) Retrieve(ctx context.Context, program, query string, limit int) ([]repository.ScoredDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	docs, err := r.docs.Search(ctx, program, query, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return docs, nil
}
