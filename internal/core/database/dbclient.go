package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/config"
	"github.com/markdave123-py/docquery/internal/core"
)

// New returns the record store selected by RECORD_STORE.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (core.RecordStore, error) {
	switch cfg.RecordStore {
	case "", "memory":
		log.Info("using in-memory record store")
		return NewMemoryClient(), nil
	case "postgres":
		return NewDatabaseClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown record store %q", cfg.RecordStore)
	}
}
