// Package memory is a brute-force in-memory vector store. It backs
// tests and deployments that do not need durability.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/vectorstore"
)

type Store struct {
	mu        sync.RWMutex
	dimension int
	entries   []vectorstore.Entry
}

func New() *Store { return &Store{} }

func (s *Store) Add(_ context.Context, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// The first added vector fixes the collection's dimension.
	dim := s.dimension
	if dim == 0 {
		dim = len(entries[0].Vector)
	}
	for _, e := range entries {
		if len(e.Vector) != dim {
			return errdefs.Newf(errdefs.KindEmbedding, "vector dimension %d does not match collection dimension %d", len(e.Vector), dim)
		}
	}

	s.dimension = dim
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) Search(_ context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.entries) == 0 {
		return []models.SearchResult{}, nil
	}

	// Dedup by chunk identity, keeping the best score.
	best := make(map[string]models.SearchResult, len(s.entries))
	for _, e := range s.entries {
		score := cosine(vector, e.Vector)
		if prev, ok := best[e.Chunk.ID]; !ok || score > prev.Score {
			best[e.Chunk.ID] = models.SearchResult{Chunk: e.Chunk, Score: score}
		}
	}

	results := make([]models.SearchResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Persist is a no-op; the store is not durable.
func (s *Store) Persist(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// cosine similarity clamped to [0, 1] so scores compare across
// backends.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	score := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
