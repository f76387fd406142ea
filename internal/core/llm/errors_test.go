package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/markdave123-py/docquery/internal/core"
)

func TestParseGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"http 403", &googleapi.Error{Code: 403, Message: "API key not valid"}, core.ErrUnauthorized},
		{"http 429", &googleapi.Error{Code: 429, Message: "quota"}, core.ErrRateLimited},
		{"http 500", &googleapi.Error{Code: 500, Message: "internal"}, core.ErrProviderError},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "no key"), core.ErrUnauthorized},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), core.ErrRateLimited},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), core.ErrNetworkFailure},
		{"deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), core.ErrNetworkFailure},
		{"other", errors.New("boom"), core.ErrProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, parseGeminiError(tt.err), tt.want)
		})
	}
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("  short "))

	long := shorten(strings.Repeat("é", 300))
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.LessOrEqual(t, len(long), maxDetailLen+3)
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "bad model", extractDetail([]byte(`{"detail":"bad model"}`)))
	assert.Equal(t, "quota", extractDetail([]byte(`{"error":{"message":"quota"}}`)))
	assert.Empty(t, extractDetail([]byte(`not json`)))
}

func TestGeminiLLM_NotConfigured(t *testing.T) {
	g, err := NewGeminiLLM(context.Background(), "", "", nil)
	assert.NoError(t, err)
	assert.False(t, g.Configured())

	_, err = g.Complete(context.Background(), core.Prompt{UserMessage: "hi"}, core.CompletionOptions{})
	assert.ErrorIs(t, err, core.ErrNotConfigured)
	assert.NoError(t, g.Close())
}
