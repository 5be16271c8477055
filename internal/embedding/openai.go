package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/paperbase/ragd/internal/errdefs"
)

// OpenAIEmbedder generates embeddings with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	Client  openai.Client
	ModelID string
	Dim     int
}

func NewOpenAIEmbedder(apiKey string, model string, dim int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI embedding model ID is required")
	}

	openaiClient := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	)

	return &OpenAIEmbedder{
		Client:  openaiClient,
		ModelID: model,
		Dim:     dim,
	}, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.Dim
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	output, err := e.Client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:      openai.EmbeddingModel(e.ModelID),
		Dimensions: openai.Int(int64(e.Dim)),
	})
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindEmbedding, fmt.Errorf("unable to invoke embeddings model: %w", err))
	}

	if len(output.Data) != len(texts) {
		return nil, errdefs.Newf(errdefs.KindEmbedding, "expected %d embeddings, got %d", len(texts), len(output.Data))
	}

	out := make([][]float32, len(output.Data))
	for i, d := range output.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		if len(vec) != e.Dim {
			return nil, errdefs.Newf(errdefs.KindEmbedding, "model returned dimension %d, expected %d", len(vec), e.Dim)
		}
		out[i] = vec
	}
	return out, nil
}
