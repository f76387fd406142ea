package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/config"
	"github.com/markdave123-py/docquery/internal/core"
	db "github.com/markdave123-py/docquery/internal/core/database"
	"github.com/markdave123-py/docquery/internal/core/ingestion_engine"
	"github.com/markdave123-py/docquery/internal/core/llm"
	objectclient "github.com/markdave123-py/docquery/internal/core/object-client"
	"github.com/markdave123-py/docquery/internal/metrics"
	"github.com/markdave123-py/docquery/internal/services"
)

type App struct {
	Records  core.RecordStore
	Blobs    core.BlobStore
	Pipeline *ingestion_engine.Pipeline
	Server   *Server

	closeCompleter func() error
	log            *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	metrics.Register()

	records, err := db.New(appCtx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init record store: %w", err)
	}
	log.Info("record store ready", zap.String("kind", cfg.RecordStore))

	blobs, err := objectclient.New(appCtx, cfg, log)
	if err != nil {
		_ = records.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	log.Info("blob store ready", zap.String("kind", cfg.BlobStore))

	pipeline, closeCompleter, err := NewPipeline(ctx, cfg, blobs, log)
	if err != nil {
		_ = records.Close()
		return nil, err
	}

	docs := services.NewDocumentService(records, blobs, pipeline, ingestion_engine.NewPdfcpuPageCounter(), cfg.MaxUploadBytes, log)
	comments := services.NewCommentService(records)

	return &App{
		Records:        records,
		Blobs:          blobs,
		Pipeline:       pipeline,
		Server:         NewServer(cfg, log, docs, comments),
		closeCompleter: closeCompleter,
		log:            log,
	}, nil
}

// NewPipeline builds the extraction and completion pipeline. blobs may be nil when
// documents are passed in directly, as the CLI does.
func NewPipeline(ctx context.Context, cfg *config.Config, blobs core.BlobStore, log *zap.Logger) (*ingestion_engine.Pipeline, func() error, error) {
	extractor, err := newExtractor(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	completer, closeCompleter, err := llm.NewCompletionClient(ctx, llm.Config{
		Provider:      cfg.AIProvider,
		OpenAIKey:     cfg.OpenAIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiKey:     cfg.GeminiKey,
		Model:         cfg.GenModel,
		CacheSize:     cfg.CompletionCacheSize,
		CacheTTL:      cfg.CompletionCacheTTL,
		Logger:        log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init completion client: %w", err)
	}

	return ingestion_engine.NewPipeline(extractor, completer, blobs, PipelineConfig(cfg), log), closeCompleter, nil
}

// newExtractor builds the pipeline's text extractor. Page counts are recorded by the
// document service at upload time and the pipeline bounds extraction with EXTRACT_TIMEOUT,
// so the extractor does neither.
func newExtractor(cfg *config.Config, log *zap.Logger) (*ingestion_engine.DocumentExtractor, error) {
	parser, err := ingestion_engine.NewPDFParser(cfg.PDFBackend)
	if err != nil {
		return nil, err
	}
	return ingestion_engine.NewDocumentExtractor(parser, nil, 0, log), nil
}

// PipelineConfig maps the service configuration onto pipeline settings.
func PipelineConfig(cfg *config.Config) ingestion_engine.PipelineConfig {
	summaryTemp, answerTemp := cfg.SummaryTemperature, cfg.AnswerTemperature
	return ingestion_engine.PipelineConfig{
		MaxExcerptChars:   cfg.MaxExcerptChars,
		MaxBlobBytes:      cfg.MaxUploadBytes,
		ExtractTimeout:    cfg.ExtractTimeout,
		CompletionTimeout: cfg.CompletionTimeout,
		Summary:           core.CompletionOptions{MaxTokens: cfg.SummaryMaxTokens, Temperature: &summaryTemp},
		Answer:            core.CompletionOptions{MaxTokens: cfg.AnswerMaxTokens, Temperature: &answerTemp},
	}
}

func (a *App) Close() error {
	var errs []error
	if a.closeCompleter != nil {
		errs = append(errs, a.closeCompleter())
	}
	if a.Records != nil {
		errs = append(errs, a.Records.Close())
	}
	return errors.Join(errs...)
}
