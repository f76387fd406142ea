package ingestion_engine

import (
	"time"

	"github.com/markdave123-py/docquery/internal/core"
)

const (
	// DefaultSummary is returned when the provider answers a summary request with nothing.
	DefaultSummary = "Unable to generate summary."
	// DefaultAnswer is returned when the provider answers a question with nothing.
	DefaultAnswer = "Unable to answer question."
)

// PipelineConfig tunes the pipeline.
//
// MaxExcerptChars:   character budget of the excerpt sent to the provider.
// MaxBlobBytes:      blobs above this size are rejected before extraction, 0 disables the check.
// ExtractTimeout:    bound on extraction, 0 disables it.
// CompletionTimeout: bound on the completion call, 0 disables it.
// Summary / Answer:  per-intent completion options.
type PipelineConfig struct {
	MaxExcerptChars   int
	MaxBlobBytes      int64
	ExtractTimeout    time.Duration
	CompletionTimeout time.Duration
	Summary           core.CompletionOptions
	Answer            core.CompletionOptions
}

// DefaultPipelineConfig mirrors the service defaults.
func DefaultPipelineConfig() PipelineConfig {
	summaryTemp := float32(0.5)
	answerTemp := float32(0.7)
	return PipelineConfig{
		MaxExcerptChars:   10000,
		MaxBlobBytes:      10 << 20,
		ExtractTimeout:    30 * time.Second,
		CompletionTimeout: 60 * time.Second,
		Summary:           core.CompletionOptions{MaxTokens: 300, Temperature: &summaryTemp},
		Answer:            core.CompletionOptions{MaxTokens: 500, Temperature: &answerTemp},
	}
}

// Stage is the last step a pipeline run reached.
type Stage int

const (
	StageFetching Stage = iota
	StageExtracting
	StageTruncating
	StagePrompting
	StageCompleting
	StageSucceeded
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageFetching:
		return "fetching"
	case StageExtracting:
		return "extracting"
	case StageTruncating:
		return "truncating"
	case StagePrompting:
		return "prompting"
	case StageCompleting:
		return "completing"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}
