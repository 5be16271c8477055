// Package rag holds the retrieval and answer-generation core: a
// question is embedded, the nearest chunks are fetched from the
// store, and the model answers grounded in them.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/paperbase/ragd/internal/embedding"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/vectorstore"
	"github.com/rs/zerolog"
)

type Retriever struct {
	embedder     embedding.Embedder
	store        vectorstore.Store
	defaultTopK  int
	embedTimeout time.Duration
	logger       *zerolog.Logger
}

func NewRetriever(embedder embedding.Embedder, store vectorstore.Store, defaultTopK int, embedTimeout time.Duration, logger *zerolog.Logger) *Retriever {
	return &Retriever{
		embedder:     embedder,
		store:        store,
		defaultTopK:  defaultTopK,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
}

// Retrieve embeds the question and returns the topK most similar
// chunks, best first. Ranking policy lives entirely in the store's
// similarity metric; nothing is re-ranked here.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	defer cancel()

	vector, err := r.embedder.Embed(embedCtx, question)
	if err != nil {
		if errdefs.KindOf(err) == "" {
			err = errdefs.Wrap(errdefs.KindEmbedding, err)
		}
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vector) != r.embedder.Dimension() {
		return nil, errdefs.Newf(errdefs.KindEmbedding, "embedding dimension %d does not match expected %d", len(vector), r.embedder.Dimension())
	}

	results, err := r.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	r.logger.Debug().
		Int("top_k", topK).
		Int("results", len(results)).
		Msg("Retrieval complete")

	return results, nil
}
