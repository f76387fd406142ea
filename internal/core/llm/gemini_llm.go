package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/markdave123-py/docquery/internal/core"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiLLM is a completion client for Google Gemini.
// Without an API key the SDK client is never created.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
	log       *zap.Logger
}

var _ core.CompletionClient = (*GeminiLLM)(nil)

func NewGeminiLLM(ctx context.Context, apiKey, modelName string, log *zap.Logger, opts ...option.ClientOption) (*GeminiLLM, error) {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	g := &GeminiLLM{modelName: modelName, log: log}
	if strings.TrimSpace(apiKey) == "" {
		return g, nil
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g.client = cl
	return g, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Configured() bool { return g.client != nil }

func (g *GeminiLLM) Complete(ctx context.Context, prompt core.Prompt, opts core.CompletionOptions) (string, error) {
	if g.client == nil {
		return "", core.NewCompletionError(core.CompletionNotConfigured, "missing API key", 0, nil)
	}

	modelName := g.modelName
	if opts.Model != "" {
		modelName = opts.Model
	}

	m := g.client.GenerativeModel(modelName)
	if prompt.SystemInstruction != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(prompt.SystemInstruction)},
		}
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.Temperature != nil {
		m.SetTemperature(*opts.Temperature)
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(prompt.UserMessage))
	if err != nil {
		ce := parseGeminiError(err)
		observe("gemini", modelName, start, usage{}, ce)
		g.log.Warn("gemini generate failed",
			zap.String("model", modelName),
			zap.String("kind", string(ce.Kind)),
			zap.Error(err))
		return "", ce
	}

	text := candidateText(resp)
	if strings.TrimSpace(text) == "" {
		ce := core.NewCompletionError(core.CompletionEmptyResponse, "", 0, nil)
		observe("gemini", modelName, start, usage{}, ce)
		return "", ce
	}

	var u usage
	if resp.UsageMetadata != nil {
		u = usage{
			prompt:     int(resp.UsageMetadata.PromptTokenCount),
			completion: int(resp.UsageMetadata.CandidatesTokenCount),
			total:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	observe("gemini", modelName, start, u, nil)
	return text, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
