package objectclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	cfg "github.com/markdave123-py/docquery/internal/config"
	"github.com/markdave123-py/docquery/internal/core"
)

// New returns the blob store selected by BLOB_STORE.
func New(ctx context.Context, cfg *cfg.Config, log *zap.Logger) (core.BlobStore, error) {
	switch cfg.BlobStore {
	case "", "memory":
		log.Info("using in-memory blob store")
		return NewMemoryStore(), nil
	case "s3":
		return NewS3Client(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.BlobStore)
	}
}
