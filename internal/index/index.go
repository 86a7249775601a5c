// Package index embeds segments into a vector collection and exposes the
// resulting collection as a similarity search handle.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"pdfchat/internal/domain"
	"pdfchat/internal/embedding"
	"pdfchat/internal/vectorstore"
)

// ErrNoSegments is returned when there is nothing to index.
var ErrNoSegments = errors.New("no segments to index")

// NamespaceMode selects how processing cycles share the collection.
type NamespaceMode string

const (
	// NamespaceShared writes every run into the same namespace, so vectors
	// from earlier runs stay searchable.
	NamespaceShared NamespaceMode = "shared"
	// NamespaceRun gives each processing cycle a fresh namespace.
	NamespaceRun NamespaceMode = "run"
)

// Indexer embeds segments and upserts them into one named collection.
type Indexer struct {
	embedder   embedding.Embedder
	store      vectorstore.Storage
	collection string
	mode       NamespaceMode
	logger     *slog.Logger
}

// NewIndexer builds an indexer over store. The collection name is informational;
// the store is already bound to it.
func NewIndexer(emb embedding.Embedder, store vectorstore.Storage, collection string, mode NamespaceMode, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = NamespaceShared
	}
	return &Indexer{embedder: emb, store: store, collection: collection, mode: mode, logger: logger}
}

// Build embeds every segment and writes them in a single upsert. The first
// failure aborts the whole batch; no handle is returned in that case.
func (ix *Indexer) Build(ctx context.Context, segments []domain.Segment) (*Handle, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}

	emb := ix.embedder
	fitted := false
	if f, ok := emb.(embedding.Fitter); ok {
		e, err := f.Fit(texts)
		if err != nil {
			return nil, fmt.Errorf("fit %s embedder: %w", emb.Name(), err)
		}
		emb, fitted = e, true
	}

	vectors := make([][]float64, len(segments))
	for i, text := range texts {
		vec, err := emb.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed segment %d: %w", i, err)
		}
		vectors[i] = vec
	}

	if err := ix.store.Init(ctx, len(vectors[0])); err != nil {
		return nil, fmt.Errorf("init collection %s: %w", ix.collection, err)
	}
	// Every fit has its own vocabulary, so its vectors only compare with
	// vectors from the same fit.
	namespace := ""
	if ix.mode == NamespaceRun || fitted {
		namespace = uuid.NewString()
	}
	if err := ix.store.Upsert(ctx, namespace, segments, vectors); err != nil {
		return nil, fmt.Errorf("upsert into %s: %w", ix.collection, err)
	}

	ix.logger.Info("Indexed segments",
		slog.String("collection", ix.collection),
		slog.String("namespace", namespace),
		slog.String("embedder", emb.Name()),
		slog.Int("segments", len(segments)),
		slog.Int("dimension", len(vectors[0])))

	return &Handle{store: ix.store, embedder: emb, collection: ix.collection, namespace: namespace}, nil
}

// Handle is a reference to a populated collection. It embeds queries with the
// same embedder that built it.
type Handle struct {
	store      vectorstore.Storage
	embedder   embedding.Embedder
	collection string
	namespace  string
}

// Collection returns the collection name the handle searches.
func (h *Handle) Collection() string { return h.collection }

// Namespace returns the namespace the handle searches; "" is the shared one.
func (h *Handle) Namespace() string { return h.namespace }

// Search returns the k segments most similar to query.
func (h *Handle) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	vec, err := h.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	res, err := h.store.Search(ctx, h.namespace, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", h.collection, err)
	}
	return res, nil
}
