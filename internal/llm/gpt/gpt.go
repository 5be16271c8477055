package gpt

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/llm"
)

func (c *Client) Complete(ctx context.Context, request llm.Request) (*llm.Response, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if request.System != "" {
		messages = append(messages, openai.SystemMessage(request.System))
	}
	messages = append(messages, openai.UserMessage(request.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(request.MaxTokens)),
		Temperature:         openai.Float(request.Temperature),
		Model:               openai.ChatModel(c.ModelID),
	}

	output, err := c.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindGeneration, fmt.Errorf("unable to invoke gpt model: %w", err))
	}

	if len(output.Choices) == 0 {
		return nil, errdefs.New(errdefs.KindGeneration, "no choices in response")
	}

	response := output.Choices[0]
	return &llm.Response{
		Content:    response.Message.Content,
		StopReason: fmt.Sprint(response.FinishReason),
	}, nil
}

// CompleteWithRetry relies on the SDK's built-in retries.
func (c *Client) CompleteWithRetry(ctx context.Context, request llm.Request) (*llm.Response, error) {
	return c.Complete(ctx, request)
}
