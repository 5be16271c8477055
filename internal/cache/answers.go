// Package cache memoizes generated answers in Redis so repeated
// questions skip retrieval and generation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paperbase/ragd/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "ragd:answer:"

type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewAnswerCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *AnswerCache {
	return &AnswerCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached answer for the question, or nil on a miss.
// Cache failures degrade to a miss; the caller regenerates the answer.
func (c *AnswerCache) Get(ctx context.Context, question string, topK int) (*models.Answer, error) {
	raw, err := c.client.Get(ctx, cacheKey(question, topK)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Answer cache lookup failed")
		return nil, nil
	}

	var answer models.Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		c.logger.Warn().Err(err).Msg("Discarding undecodable cached answer")
		return nil, nil
	}
	return &answer, nil
}

func (c *AnswerCache) Set(ctx context.Context, question string, topK int, answer models.Answer) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(question, topK), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

// Flush drops every cached answer. Called after ingestion so answers
// reflect the updated index.
func (c *AnswerCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached answers: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cached answers: %w", err)
	}
	c.logger.Info().Int("entries", len(keys)).Msg("Answer cache flushed")
	return nil
}

func cacheKey(question string, topK int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", topK, question))
	return keyPrefix + hex.EncodeToString(sum[:])
}
