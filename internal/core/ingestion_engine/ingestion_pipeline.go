package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/logger"
	"github.com/markdave123-py/docquery/internal/metrics"
	"go.uber.org/zap"
)

const (
	opSummarize = "summarize"
	opAnswer    = "answer_question"
)

// Pipeline runs extract -> truncate -> prompt -> complete for one blob.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	extractor core.TextExtractor
	completer core.CompletionClient
	blobs     core.BlobStore
	cfg       PipelineConfig
	log       *zap.Logger
}

// NewPipeline wires the pipeline. blobs may be nil when callers always pass blobs directly.
func NewPipeline(extractor core.TextExtractor, completer core.CompletionClient, blobs core.BlobStore, cfg PipelineConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		extractor: extractor,
		completer: completer,
		blobs:     blobs,
		cfg:       cfg,
		log:       log,
	}
}

// SummarizeOnUpload produces a summary for a freshly uploaded blob.
// It never fails: any problem yields ("", false) and is logged.
func (p *Pipeline) SummarizeOnUpload(ctx context.Context, blob core.UploadedBlob) (string, bool) {
	log := logger.FromContextOr(ctx, p.log).With(zap.String("operation", opSummarize))

	if !p.completer.Configured() {
		log.Info("summary skipped, completion client not configured")
		p.record(opSummarize, "skipped", StageCompleting)
		return "", false
	}

	summary, stage, err := p.run(ctx, blob, core.SummarizeIntent(), p.cfg.Summary, DefaultSummary)
	if err != nil {
		log.Warn("summary failed", zap.Stringer("stage", stage), zap.Error(err))
		p.record(opSummarize, "failed", stage)
		return "", false
	}

	p.record(opSummarize, "succeeded", StageSucceeded)
	return summary, true
}

// AnswerQuestion answers question from the content of blob.
// Every failure is a *core.PipelineError.
func (p *Pipeline) AnswerQuestion(ctx context.Context, blob core.UploadedBlob, question string) (string, error) {
	intent, err := core.AnswerQuestionIntent(question)
	if err != nil {
		p.record(opAnswer, "failed", StageFetching)
		return "", core.NewPipelineError(core.PipelineInvalidQuestion, err)
	}
	return p.answer(ctx, blob, intent)
}

// AnswerQuestionByKey fetches the blob from the blob store first.
// A missing blob is reported as core.ErrBlobNotFound.
func (p *Pipeline) AnswerQuestionByKey(ctx context.Context, key string, mediaType core.MediaType, question string) (string, error) {
	intent, err := core.AnswerQuestionIntent(question)
	if err != nil {
		p.record(opAnswer, "failed", StageFetching)
		return "", core.NewPipelineError(core.PipelineInvalidQuestion, err)
	}
	if p.blobs == nil {
		return "", errors.New("pipeline has no blob store")
	}

	data, err := p.blobs.Get(ctx, key)
	if err != nil {
		logger.FromContextOr(ctx, p.log).Warn("blob fetch failed",
			zap.String("operation", opAnswer), zap.String("key", key), zap.Error(err))
		p.record(opAnswer, "failed", StageFetching)
		return "", fmt.Errorf("fetch blob %q: %w", key, err)
	}

	blob := core.UploadedBlob{Data: data, MediaType: mediaType, Size: int64(len(data))}
	return p.answer(ctx, blob, intent)
}

func (p *Pipeline) answer(ctx context.Context, blob core.UploadedBlob, intent core.Intent) (string, error) {
	log := logger.FromContextOr(ctx, p.log).With(zap.String("operation", opAnswer))

	answer, stage, err := p.run(ctx, blob, intent, p.cfg.Answer, DefaultAnswer)
	if err != nil {
		log.Warn("answer failed", zap.Stringer("stage", stage), zap.Error(err))
		p.record(opAnswer, "failed", stage)
		return "", err
	}

	log.Debug("answer produced", zap.Int("chars", len(answer)))
	p.record(opAnswer, "succeeded", StageSucceeded)
	return answer, nil
}

// run executes the shared stages. On failure it returns the stage that failed.
func (p *Pipeline) run(ctx context.Context, blob core.UploadedBlob, intent core.Intent, opts core.CompletionOptions, fallback string) (string, Stage, error) {
	stage := StageFetching
	size := blob.Size
	if n := int64(len(blob.Data)); n > size {
		size = n
	}
	if p.cfg.MaxBlobBytes > 0 && size > p.cfg.MaxBlobBytes {
		return "", stage, core.NewPipelineError(core.PipelinePayloadTooLarge, nil)
	}

	stage = StageExtracting
	ectx := ctx
	if p.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, p.cfg.ExtractTimeout)
		defer cancel()
	}
	extracted, err := p.extractor.Extract(ectx, blob)
	if err != nil {
		if errors.Is(err, core.ErrUnsupportedMediaType) {
			return "", stage, core.NewPipelineError(core.PipelineUnsupportedType, err)
		}
		return "", stage, core.NewPipelineError(core.PipelineDocumentUnreadable, err)
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return "", stage, core.NewPipelineError(core.PipelineEmptyContent, nil)
	}

	stage = StageTruncating
	excerpt := Truncate(extracted.Text, p.cfg.MaxExcerptChars)

	stage = StagePrompting
	prompt := BuildPrompt(excerpt, intent)

	stage = StageCompleting
	cctx := ctx
	if p.cfg.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, p.cfg.CompletionTimeout)
		defer cancel()
	}
	out, err := p.completer.Complete(cctx, prompt, opts)
	if err != nil {
		if errors.Is(err, core.ErrEmptyResponse) {
			return fallback, StageSucceeded, nil
		}
		var ce *core.CompletionError
		if !errors.As(err, &ce) {
			ce = core.NewCompletionError(core.CompletionProviderError, err.Error(), 0, err)
		}
		return "", stage, core.NewPipelineError(core.PipelineCompletion, ce)
	}
	if strings.TrimSpace(out) == "" {
		return fallback, StageSucceeded, nil
	}
	return out, StageSucceeded, nil
}

func (p *Pipeline) record(operation, outcome string, stage Stage) {
	metrics.PipelineRunsTotal.WithLabelValues(operation, outcome, stage.String()).Inc()
}
