package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"pdfchat/internal/domain"
	"pdfchat/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Upserts accumulate like a remote collection would. Vectors of different
// dimensions may coexist; a search only scores entries whose dimension
// matches the query.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
}

type entry struct {
	namespace string
	segment   domain.Segment
	vector    []float64
}

// NewStorage creates an empty store.
func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, namespace string, segments []domain.Segment, vectors [][]float64) error {
	if len(segments) != len(vectors) {
		return errors.New("segments and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i := range segments {
		s.entries = append(s.entries, entry{namespace: namespace, segment: segments[i], vector: vectors[i]})
	}
	return nil
}

func (s *Storage) Search(_ context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 1
	}
	var results []domain.SearchResult
	for _, e := range s.entries {
		if e.namespace != namespace || len(e.vector) != len(vector) {
			continue
		}
		results = append(results, domain.SearchResult{Segment: e.segment, Score: cosine(e.vector, vector)})
	}
	// Stable so equal scores keep insertion order.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of stored vectors across namespaces.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Storage) Close() error { return nil }

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
