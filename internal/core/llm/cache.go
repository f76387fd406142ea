package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/logger"
	"github.com/markdave123-py/docquery/internal/metrics"
)

// WrapLRUCache caches successful completions in memory.
// It returns next unchanged when size or ttl is not positive.
func WrapLRUCache(next core.CompletionClient, size int, ttl time.Duration) core.CompletionClient {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &lruCompleter{
		next:  next,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

type lruCompleter struct {
	next  core.CompletionClient
	cache *expirable.LRU[string, string]
}

func (l *lruCompleter) Complete(ctx context.Context, prompt core.Prompt, opts core.CompletionOptions) (string, error) {
	key := buildCacheKey(prompt, opts)
	if cached, ok := l.cache.Get(key); ok {
		logger.FromContext(ctx).Debug("completion cache hit (lru)")
		metrics.CompletionCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CompletionCacheTotal.WithLabelValues("miss").Inc()

	out, err := l.next.Complete(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	l.cache.Add(key, out)
	return out, nil
}

func (l *lruCompleter) Configured() bool { return l.next.Configured() }

func (l *lruCompleter) Close() error {
	if c, ok := l.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func buildCacheKey(prompt core.Prompt, opts core.CompletionOptions) string {
	temp := "default"
	if opts.Temperature != nil {
		temp = fmt.Sprintf("%g", *opts.Temperature)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s\x00%s\x00%s", opts.Model, opts.MaxTokens, temp, prompt.SystemInstruction, prompt.UserMessage)
	return "completion:" + hex.EncodeToString(h.Sum(nil))
}
