package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paperbase/ragd/internal/config"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/llm"
	"github.com/paperbase/ragd/internal/models"
	"github.com/rs/zerolog"
)

// contextDelimiter separates retrieved chunks inside the prompt so the
// model sees them as distinct excerpts.
const contextDelimiter = "\n\n---\n\n"

type Answerer struct {
	client  llm.Client
	prompt  config.AnswerPrompt
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewAnswerer(client llm.Client, prompt config.AnswerPrompt, timeout time.Duration, logger *zerolog.Logger) *Answerer {
	return &Answerer{
		client:  client,
		prompt:  prompt,
		timeout: timeout,
		logger:  logger,
	}
}

// Answer asks the model the question grounded in the retrieved chunks.
// The model is always called, even with an empty retrieval; the system
// prompt instructs it to admit when the context does not cover the
// question.
func (a *Answerer) Answer(ctx context.Context, question string, retrieved []models.SearchResult) (models.Answer, error) {
	system := strings.ReplaceAll(a.prompt.System, "{context}", buildContext(retrieved))

	llmCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CompleteWithRetry(llmCtx, llm.Request{
		System:      system,
		Prompt:      question,
		MaxTokens:   a.prompt.MaxTokens,
		Temperature: a.prompt.Temperature,
	})
	if err != nil {
		if errdefs.KindOf(err) == "" {
			err = errdefs.Wrap(errdefs.KindGeneration, err)
		}
		return models.Answer{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return models.Answer{}, errdefs.New(errdefs.KindGeneration, "model returned an empty answer")
	}

	a.logger.Debug().
		Int("context_chunks", len(retrieved)).
		Str("stop_reason", resp.StopReason).
		Msg("Answer generated")

	return models.Answer{Text: text, Sources: retrieved}, nil
}

func buildContext(retrieved []models.SearchResult) string {
	if len(retrieved) == 0 {
		return ""
	}
	parts := make([]string, len(retrieved))
	for i, r := range retrieved {
		parts[i] = r.Chunk.Text
	}
	return strings.Join(parts, contextDelimiter)
}
