package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptsConfig holds the grounding prompt template loaded from YAML.
type PromptsConfig struct {
	Answer AnswerPrompt `yaml:"answer"`
}

type AnswerPrompt struct {
	// System is the instruction template. It must contain the
	// {context} placeholder where retrieved chunks are substituted.
	System      string  `yaml:"system"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

const defaultAnswerSystem = `You are an assistant that answers questions about uploaded documents.
Use ONLY the context below to answer. If the context does not contain
the answer, say that you don't know. Do not invent facts.

Context:
{context}`

func LoadPromptsConfig() (*PromptsConfig, error) {
	path := os.Getenv("PROMPTS_CONFIG_PATH")
	if path == "" {
		path = "configs/prompts.yaml"
	}

	var cfg PromptsConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// No file is fine, the built-in template applies.
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *PromptsConfig) {
	if cfg.Answer.System == "" {
		cfg.Answer.System = defaultAnswerSystem
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = 1000
	}
}

func (p *PromptsConfig) Validate() error {
	if !strings.Contains(p.Answer.System, "{context}") {
		return fmt.Errorf("answer system prompt must contain the {context} placeholder")
	}
	if p.Answer.MaxTokens < 0 {
		return fmt.Errorf("answer max_tokens must not be negative")
	}
	return nil
}
