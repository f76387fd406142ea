package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/core"
)

// Config selects and configures the completion backend.
type Config struct {
	Provider      string
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiKey     string
	Model         string
	CacheSize     int
	CacheTTL      time.Duration
	Logger        *zap.Logger
}

// NewCompletionClient builds the configured backend, wrapped in the LRU cache when enabled.
// The returned close func releases SDK resources.
func NewCompletionClient(ctx context.Context, cfg Config) (core.CompletionClient, func() error, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var client core.CompletionClient
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		client = NewOpenAILLM(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
			Logger:  log,
		})
	case "gemini":
		g, err := NewGeminiLLM(ctx, cfg.GeminiKey, cfg.Model, log)
		if err != nil {
			return nil, nil, err
		}
		client = g
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	if !client.Configured() {
		log.Warn("completion client has no API key, AI features disabled", zap.String("provider", cfg.Provider))
	}

	client = WrapLRUCache(client, cfg.CacheSize, cfg.CacheTTL)

	closeFn := func() error {
		if c, ok := client.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}
	return client, closeFn, nil
}
