package embedding

import (
	"context"
)

// Embedder maps text to a fixed-dimension vector. Every vector a given
// instance produces has Dimension() entries; anything else is reported
// as an embedding error, never returned.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
