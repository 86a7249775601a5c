// Package pgvector stores segment vectors in PostgreSQL with the pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"

	"pdfchat/internal/domain"
	"pdfchat/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Config holds the connection string and the collection (table) name.
type Config struct {
	DSN        string
	Collection string
}

// Storage keeps one table per collection; rows are only ever inserted.
type Storage struct {
	pool  *pgxpool.Pool
	table string
}

// Open connects to the database and enables the vector extension.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.DSN == "" {
		return nil, errors.New("pgvector: empty connection string")
	}
	if cfg.Collection == "" {
		return nil, errors.New("pgvector: empty collection name")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create vector extension: %w", err)
	}
	return &Storage{pool: pool, table: pgx.Identifier{cfg.Collection}.Sanitize()}, nil
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id        uuid PRIMARY KEY,
			namespace text NOT NULL DEFAULT '',
			position  integer NOT NULL,
			overlap   integer NOT NULL DEFAULT 0,
			content   text NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.table, dimension)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

func (s *Storage) Upsert(ctx context.Context, namespace string, segments []domain.Segment, vectors [][]float64) error {
	if len(segments) != len(vectors) {
		return errors.New("segments and vectors length mismatch")
	}
	insert := fmt.Sprintf(
		`INSERT INTO %s (id, namespace, position, overlap, content, embedding) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.table)
	batch := &pgx.Batch{}
	for i, seg := range segments {
		batch.Queue(insert, uuid.New(), namespace, seg.Index, seg.Overlap, seg.Text, pgvec.NewVector(toFloat32(vectors[i])))
	}
	br := s.pool.SendBatch(ctx, batch)
	for range segments {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to store segment: %w", err)
		}
	}
	return br.Close()
}

func (s *Storage) Search(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 1
	}
	query := fmt.Sprintf(`
		SELECT position, overlap, content, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE namespace = $2
		ORDER BY embedding <=> $1
		LIMIT $3`, s.table)
	rows, err := s.pool.Query(ctx, query, pgvec.NewVector(toFloat32(vector)), namespace, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(&r.Segment.Index, &r.Segment.Overlap, &r.Segment.Text, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
