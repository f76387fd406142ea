package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/core"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig holds the settings of an OpenAI-compatible completion backend.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Provider   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// OpenAILLM is a completion client for the OpenAI chat completions API.
// Without an API key no SDK client is built and every call returns NotConfigured.
type OpenAILLM struct {
	client   *openai.Client
	model    string
	provider string
	log      *zap.Logger
}

var _ core.CompletionClient = (*OpenAILLM)(nil)

func NewOpenAILLM(cfg OpenAIConfig) *OpenAILLM {
	l := &OpenAILLM{
		model:    cfg.Model,
		provider: cfg.Provider,
		log:      cfg.Logger,
	}
	if l.model == "" {
		l.model = defaultOpenAIModel
	}
	if l.provider == "" {
		l.provider = "openai"
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return l
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	l.client = openai.NewClientWithConfig(clientCfg)
	return l
}

func (l *OpenAILLM) Configured() bool { return l.client != nil }

// Complete sends one chat completion request. It never retries.
func (l *OpenAILLM) Complete(ctx context.Context, prompt core.Prompt, opts core.CompletionOptions) (string, error) {
	if l.client == nil {
		return "", core.NewCompletionError(core.CompletionNotConfigured, "missing API key", 0, nil)
	}

	model := l.model
	if opts.Model != "" {
		model = opts.Model
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt.UserMessage},
		},
		MaxTokens: opts.MaxTokens,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}

	start := time.Now()
	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		ce := parseOpenAIError(err)
		observe(l.provider, model, start, usage{}, ce)
		l.log.Warn("chat completion failed",
			zap.String("model", model),
			zap.String("kind", string(ce.Kind)),
			zap.Int("status", ce.StatusCode),
			zap.Error(err))
		return "", ce
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		ce := core.NewCompletionError(core.CompletionEmptyResponse, "", 0, nil)
		observe(l.provider, model, start, usage{}, ce)
		return "", ce
	}

	observe(l.provider, model, start, usage{
		prompt:     resp.Usage.PromptTokens,
		completion: resp.Usage.CompletionTokens,
		total:      resp.Usage.TotalTokens,
	}, nil)
	return resp.Choices[0].Message.Content, nil
}

func (l *OpenAILLM) Close() error { return nil }
