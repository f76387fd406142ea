package llm

import (
	"errors"
	"time"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/metrics"
)

type usage struct {
	prompt     int
	completion int
	total      int
}

// observe records one completion call.
func observe(provider, model string, start time.Time, u usage, err error) {
	metrics.CompletionRequestDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := "unknown"
		var ce *core.CompletionError
		if errors.As(err, &ce) {
			kind = string(ce.Kind)
		}
		metrics.CompletionRequestsTotal.WithLabelValues(provider, model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(provider, model, kind).Inc()
		return
	}

	metrics.CompletionRequestsTotal.WithLabelValues(provider, model, "success").Inc()
	if u.total > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(u.prompt))
		metrics.CompletionTokensTotal.WithLabelValues(provider, model, "completion").Add(float64(u.completion))
		metrics.CompletionTokensTotal.WithLabelValues(provider, model, "total").Add(float64(u.total))
	}
}
