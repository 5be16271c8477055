package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/paperbase/ragd/internal/errdefs"
)

// BedrockEmbedder generates embeddings with an Amazon Titan text
// embedding model on Bedrock.
type BedrockEmbedder struct {
	Client  *bedrockruntime.Client
	ModelID string
	Dim     int
}

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize,omitempty"`
}

type titanEmbedResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

func NewBedrockEmbedder(client *bedrockruntime.Client, modelID string, dim int) *BedrockEmbedder {
	return &BedrockEmbedder{
		Client:  client,
		ModelID: modelID,
		Dim:     dim,
	}
}

func (e *BedrockEmbedder) Dimension() int {
	return e.Dim
}

func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := titanEmbedRequest{
		InputText:  text,
		Dimensions: e.Dim,
		Normalize:  true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindEmbedding, fmt.Errorf("unable to serialize titan request: %w", err))
	}

	output, err := e.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &e.ModelID,
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindEmbedding, fmt.Errorf("unable to invoke titan model: %w", err))
	}

	var response titanEmbedResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, errdefs.Wrap(errdefs.KindEmbedding, fmt.Errorf("failed to unmarshal bedrock response: %w", err))
	}

	if len(response.Embedding) != e.Dim {
		return nil, errdefs.Newf(errdefs.KindEmbedding, "titan returned dimension %d, expected %d", len(response.Embedding), e.Dim)
	}

	return response.Embedding, nil
}

// EmbedBatch embeds texts one by one; the Titan invoke API takes a
// single input per call.
func (e *BedrockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d of %d: %w", i+1, len(texts), err)
		}
		out[i] = vec
	}
	return out, nil
}
