// Package vectorstore defines the persistent collection of chunk
// embeddings and its similarity-search contract.
package vectorstore

import (
	"context"

	"github.com/paperbase/ragd/internal/models"
)

// Entry is one indexed chunk with its embedding.
type Entry struct {
	Chunk  models.Chunk
	Vector []float32
}

// Store persists entries and supports nearest-neighbor search.
//
// Add appends durably and must not silently drop entries; a single
// call is transactional where the backend allows it. Search returns
// min(topK, total) results ranked by non-increasing score, with no
// duplicate chunk identities; searching an empty store returns an
// empty result, not an error. Persist flushes completed writes so they
// survive a restart. Writes are serialized internally; reads may run
// concurrently.
type Store interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
	Persist(ctx context.Context) error
	Close() error
}
