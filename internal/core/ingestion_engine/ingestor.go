package ingestion_engine

import (
	"context"

	"github.com/markdave123-py/docquery/internal/core"
)

// Ingestor is the pipeline as seen by the services layer.
type Ingestor interface {
	SummarizeOnUpload(ctx context.Context, blob core.UploadedBlob) (string, bool)
	AnswerQuestion(ctx context.Context, blob core.UploadedBlob, question string) (string, error)
	AnswerQuestionByKey(ctx context.Context, key string, mediaType core.MediaType, question string) (string, error)
}

var _ Ingestor = (*Pipeline)(nil)
