package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPromptsConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PROMPTS_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := LoadPromptsConfig()
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error %v", err)
	}
	if !strings.Contains(cfg.Answer.System, "{context}") {
		t.Error("Expected the default template to carry the context placeholder")
	}
	if cfg.Answer.MaxTokens != 1000 {
		t.Errorf("Expected default max_tokens 1000, got %d", cfg.Answer.MaxTokens)
	}
}

func TestLoadPromptsConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	contents := `answer:
  system: "Custom instructions with {context} inside"
  max_tokens: 256
  temperature: 0.5
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROMPTS_CONFIG_PATH", path)

	cfg, err := LoadPromptsConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(cfg.Answer.System, "Custom instructions") {
		t.Errorf("Expected the file's template, got %q", cfg.Answer.System)
	}
	if cfg.Answer.MaxTokens != 256 {
		t.Errorf("Expected max_tokens 256, got %d", cfg.Answer.MaxTokens)
	}
	if cfg.Answer.Temperature != 0.5 {
		t.Errorf("Expected temperature 0.5, got %f", cfg.Answer.Temperature)
	}
}

func TestLoadPromptsConfig_MissingPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	contents := `answer:
  system: "No placeholder here"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROMPTS_CONFIG_PATH", path)

	if _, err := LoadPromptsConfig(); err == nil {
		t.Error("Expected error for a template without the context placeholder")
	}
}
