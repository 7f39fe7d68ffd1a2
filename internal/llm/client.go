package llm

import (
	"context"
	"fmt"
	"time"
)

// Client is the text-generation collaborator boundary. The composer uses
// it to warm up template bodies; any failure degrades to the template.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (*Response, error)
}

type Response struct {
	Content  string
	Provider string
}

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

// NewClient builds a client from config, or nil when generation is
// disabled (the composer treats a nil client as template-only).
func NewClient(cfg Config) (Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm enabled but base_url is empty")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 350
	}
	return NewOpenAI(cfg.BaseURL, cfg.APIKey, model, timeout, maxTokens), nil
}
