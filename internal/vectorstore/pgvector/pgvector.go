// Package pgvector stores chunk embeddings in PostgreSQL with the
// pgvector extension and ranks by the <=> cosine-distance operator.
package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/vectorstore"
	pgv "github.com/pgvector/pgvector-go"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type Store struct {
	pool *pgxpool.Pool
	dim  int
}

// New connects and makes sure the schema exists for the configured
// dimension.
func New(ctx context.Context, config Config, dim int) (*Store, error) {
	pool, err := pgxpool.New(ctx, config.ConnectionString())
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("failed to connect to database: %w", err))
	}

	store := &Store{pool: pool, dim: dim}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			page INTEGER NOT NULL,
			chunk_index INTEGER NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dim),
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_document ON document_chunks (document_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Add inserts all entries in a single transaction.
func (s *Store) Add(ctx context.Context, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		if len(e.Vector) != s.dim {
			return errdefs.Newf(errdefs.KindEmbedding, "vector dimension %d does not match collection dimension %d", len(e.Vector), s.dim)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx) // Rollback if we don't commit

	query := `
        INSERT INTO document_chunks (id, document_id, page, chunk_index, start_offset, end_offset, content, embedding)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding
    `

	for i, e := range entries {
		c := e.Chunk
		if _, err := tx.Exec(ctx, query,
			c.ID, c.DocumentID, c.Page, c.Index, c.Start, c.End, c.Text,
			pgv.NewVector(e.Vector),
		); err != nil {
			return errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("failed to insert chunk %d: %w", i, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		return []models.SearchResult{}, nil
	}

	query := `
	SELECT
	  id,
	  document_id,
	  page,
	  chunk_index,
	  start_offset,
	  end_offset,
	  content,
	  embedding <=> $1 AS distance
	FROM document_chunks
	ORDER BY distance ASC
	LIMIT $2`

	rows, err := s.pool.Query(ctx, query, pgv.NewVector(vector), topK)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("unable to query the database: %w", err))
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var c models.Chunk
		var distance float64
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Page, &c.Index, &c.Start, &c.End, &c.Text, &distance); err != nil {
			return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("failed to scan row: %w", err))
		}
		results = append(results, models.SearchResult{
			Chunk: c,
			Score: distanceToScore(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("row iteration error: %w", err))
	}

	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count); err != nil {
		return 0, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	return count, nil
}

// Persist verifies the connection; PostgreSQL makes committed writes
// durable on its own.
func (s *Store) Persist(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// distanceToScore converts cosine distance (0 identical, 2 opposite)
// to a similarity score clamped to [0, 1].
func distanceToScore(distance float64) float64 {
	score := 1.0 - distance
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
