// Package sqlite is the default durable vector store: a single SQLite
// database file inside the configured data directory, searched by
// brute-force cosine similarity. Collections stay small enough (one
// corpus of paper chunks) that a scan beats maintaining an ANN index.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/vectorstore"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the persisted collection under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("failed to create data directory: %w", err))
	}

	dbPath := filepath.Join(dir, "vectors.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("open vector db: %w", err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	pragmas := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
	}
	for _, stmt := range pragmas {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init vector db: %w", err)
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT,
			page INTEGER,
			chunk_index INTEGER,
			start_offset INTEGER,
			end_offset INTEGER,
			content TEXT,
			vector TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS collection_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks (document_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init vector db: %w", err)
		}
	}
	return nil
}

// Add appends all entries in one transaction. Chunk IDs are
// deterministic per document, so a retried ingestion overwrites its
// own rows instead of duplicating them.
func (s *Store) Add(ctx context.Context, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim, err := s.dimension(ctx)
	if err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	if dim == 0 {
		dim = len(entries[0].Vector)
	}
	for _, e := range entries {
		if len(e.Vector) != dim {
			return errdefs.Newf(errdefs.KindEmbedding, "vector dimension %d does not match collection dimension %d", len(e.Vector), dim)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO chunks
		(id, document_id, page, chunk_index, start_offset, end_offset, content, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		vectorJSON, err := encodeVector(e.Vector)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.DocumentID, c.Page, c.Index, c.Start, c.End, c.Text, vectorJSON,
		); err != nil {
			_ = tx.Rollback()
			return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO collection_meta (key, value) VALUES ('dimension', ?)`,
		fmt.Sprint(dim),
	); err != nil {
		_ = tx.Rollback()
		return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		return []models.SearchResult{}, nil
	}

	queryVec, queryNorm := toFloat64Vector(vector)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, page, chunk_index, start_offset, end_offset, content, vector FROM chunks`)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	defer rows.Close()

	var hits []models.SearchResult
	for rows.Next() {
		var c models.Chunk
		var vectorJSON string
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Page, &c.Index, &c.Start, &c.End, &c.Text, &vectorJSON); err != nil {
			return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
		}
		vec, err := decodeVector(vectorJSON)
		if err != nil {
			continue
		}
		hits = append(hits, models.SearchResult{
			Chunk: c,
			Score: cosineSimilarity(queryVec, vec, queryNorm),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	if hits == nil {
		hits = []models.SearchResult{}
	}
	return hits, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, errdefs.Wrap(errdefs.KindStoreUnavailable, err)
	}
	return count, nil
}

// Persist forces a WAL checkpoint so every committed Add is in the
// main database file.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`); err != nil {
		return errdefs.Wrap(errdefs.KindStoreUnavailable, fmt.Errorf("wal checkpoint: %w", err))
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) dimension(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM collection_meta WHERE key = 'dimension'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var dim int
	if _, err := fmt.Sscanf(value, "%d", &dim); err != nil {
		return 0, fmt.Errorf("corrupt dimension metadata %q: %w", value, err)
	}
	return dim, nil
}

func encodeVector(vec []float32) (string, error) {
	data := make([]float64, len(vec))
	for i, val := range vec {
		data[i] = float64(val)
	}
	out, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeVector(raw string) ([]float64, error) {
	var vec []float64
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func toFloat64Vector(vec []float32) ([]float64, float64) {
	out := make([]float64, len(vec))
	var sum float64
	for i, val := range vec {
		v := float64(val)
		out[i] = v
		sum += v * v
	}
	return out, math.Sqrt(sum)
}

func cosineSimilarity(query []float64, vec []float64, queryNorm float64) float64 {
	if len(query) == 0 || len(vec) == 0 || queryNorm == 0 {
		return 0
	}
	if len(query) != len(vec) {
		return 0
	}
	var dot float64
	var norm float64
	for i, val := range vec {
		dot += query[i] * val
		norm += val * val
	}
	if norm == 0 {
		return 0
	}
	score := dot / (queryNorm * math.Sqrt(norm))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
