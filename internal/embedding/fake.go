package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/paperbase/ragd/internal/errdefs"
)

// FakeEmbedder is a deterministic local embedder: each token is hashed
// into a bucket of the vector and the result is L2-normalized. It needs
// no external service, which makes it the default for development and
// the fixture for tests. Texts sharing tokens get similar vectors, so
// retrieval stays meaningful enough to exercise the pipeline.
type FakeEmbedder struct {
	Dim int
}

func NewFakeEmbedder(dim int) (*FakeEmbedder, error) {
	if dim <= 0 {
		return nil, errdefs.Newf(errdefs.KindEmbedding, "embedding dimension must be positive, got %d", dim)
	}
	return &FakeEmbedder{Dim: dim}, nil
}

func (e *FakeEmbedder) Dimension() int {
	return e.Dim
}

func (e *FakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.Dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%e.Dim]++
	}

	// L2-normalize so dot products behave like cosine similarity.
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *FakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
