// Package ingest runs the indexing pipeline: parse an uploaded file,
// chunk its text, embed every chunk, and store the vectors.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/paperbase/ragd/internal/chunker"
	"github.com/paperbase/ragd/internal/embedding"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/parser"
	"github.com/paperbase/ragd/internal/vectorstore"
	"github.com/rs/zerolog"
)

// AnswerCache is the part of the answer cache the pipeline needs:
// indexing new content invalidates previously cached answers.
type AnswerCache interface {
	Flush(ctx context.Context) error
}

type Pipeline struct {
	chunker      *chunker.Chunker
	embedder     embedding.Embedder
	store        vectorstore.Store
	cache        AnswerCache
	embedTimeout time.Duration
	logger       *zerolog.Logger
}

// NewPipeline wires the ingestion stages. cache may be nil when no
// answer cache is configured.
func NewPipeline(ch *chunker.Chunker, embedder embedding.Embedder, store vectorstore.Store, cache AnswerCache, embedTimeout time.Duration, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		chunker:      ch,
		embedder:     embedder,
		store:        store,
		cache:        cache,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
}

// Ingest indexes one uploaded file. Every stage either completes for
// the whole document or fails with an error naming the stage; a failed
// ingestion leaves no partial chunks visible to search because chunk
// IDs are deterministic and the store write is transactional.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) (*models.IngestResult, error) {
	start := time.Now()

	fileParser, err := parser.New(filename)
	if err != nil {
		return nil, err
	}
	doc, err := fileParser.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	chunks := p.chunker.Split(doc.ID, doc.Pages)
	if len(chunks) == 0 {
		return nil, errdefs.Newf(errdefs.KindParse, "no indexable text in %s", filename)
	}

	entries, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := p.store.Add(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", filename, err)
	}
	if err := p.store.Persist(ctx); err != nil {
		return nil, fmt.Errorf("failed to persist index for %s: %w", filename, err)
	}

	if p.cache != nil {
		if err := p.cache.Flush(ctx); err != nil {
			// The index is already updated; stale cached answers expire
			// on their own TTL.
			p.logger.Warn().Err(err).Msg("Failed to flush answer cache after ingestion")
		}
	}

	p.logger.Info().
		Str("document_id", doc.ID).
		Str("filename", filename).
		Int("pages", len(doc.Pages)).
		Int("chunks", len(chunks)).
		Dur("duration", time.Since(start)).
		Msg("Document ingested")

	return &models.IngestResult{
		DocumentID:    doc.ID,
		PagesParsed:   len(doc.Pages),
		ChunksIndexed: len(chunks),
	}, nil
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []models.Chunk) ([]vectorstore.Entry, error) {
	embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		if errdefs.KindOf(err) == "" {
			err = errdefs.Wrap(errdefs.KindEmbedding, err)
		}
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, errdefs.Newf(errdefs.KindEmbedding, "embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]vectorstore.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = vectorstore.Entry{Chunk: c, Vector: vectors[i]}
	}
	return entries, nil
}
