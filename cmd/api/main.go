package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/app"
	"github.com/markdave123-py/docquery/internal/config"
	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/core/ingestion_engine"
	"github.com/markdave123-py/docquery/internal/logger"
	"github.com/markdave123-py/docquery/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docquery",
		Short:         "Upload documents, summarize them and ask questions about them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newSummarizeCmd(), newAskCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			application, err := app.NewApp(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("startup failed: %w", err)
			}
			defer func() {
				if err := application.Close(); err != nil {
					log.Warn("close failed", zap.Error(err))
				}
			}()

			log.Info("docquery is running", zap.String("env", cfg.Env), zap.String("ai_provider", cfg.AIProvider))
			return application.Server.Run(cmd.Context())
		},
	}
}

func newSummarizeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "summarize a local PDF or text file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline, blob, done, err := localPipeline(cmd.Context(), file)
			if err != nil {
				return err
			}
			defer done()

			summary, ok := pipeline.SummarizeOnUpload(cmd.Context(), blob)
			if !ok {
				return errors.New("no summary produced, see log for details")
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAskCmd() *cobra.Command {
	var file, question string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "ask a question about a local PDF or text file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline, blob, done, err := localPipeline(cmd.Context(), file)
			if err != nil {
				return err
			}
			defer done()

			answer, err := pipeline.AnswerQuestion(cmd.Context(), blob, question)
			if err != nil {
				var pe *core.PipelineError
				if errors.As(err, &pe) {
					return errors.New(pe.Message())
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the document")
	cmd.Flags().StringVar(&question, "question", "", "question to answer from the document")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// localPipeline builds a store-less pipeline and reads path into a blob.
func localPipeline(ctx context.Context, path string) (*ingestion_engine.Pipeline, core.UploadedBlob, func(), error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, core.UploadedBlob{}, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.UploadedBlob{}, nil, fmt.Errorf("read %s: %w", path, err)
	}
	mediaType := detectMediaType(path, data)
	if !mediaType.Supported() {
		return nil, core.UploadedBlob{}, nil, fmt.Errorf("%s: only PDF and TXT files are supported", path)
	}

	metrics.Register()
	pipeline, closeCompleter, err := app.NewPipeline(ctx, cfg, nil, log)
	if err != nil {
		return nil, core.UploadedBlob{}, nil, err
	}
	done := func() {
		_ = closeCompleter()
		_ = log.Sync()
	}
	return pipeline, core.NewUploadedBlob(data, string(mediaType)), done, nil
}

// detectMediaType uses the extension, then content sniffing.
func detectMediaType(path string, data []byte) core.MediaType {
	if mt := core.MediaTypeFromFilename(path); mt.Supported() {
		return mt
	}
	return core.ParseMediaType(http.DetectContentType(data))
}
