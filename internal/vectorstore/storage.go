package vectorstore

import (
	"context"

	"pdfchat/internal/domain"
)

// Storage persists segment vectors in one named collection and supports
// similarity search. Upserts append; nothing is ever deleted. The namespace
// scopes both writes and searches; "" is the shared namespace.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, namespace string, segments []domain.Segment, vectors [][]float64) error
	Search(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error)
	Close() error
}
