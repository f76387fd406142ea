package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/core/ingestion_engine"
	"github.com/markdave123-py/docquery/internal/logger"
	"github.com/markdave123-py/docquery/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentService struct {
	records        core.RecordStore
	blobs          core.BlobStore
	ingestor       ingestion_engine.Ingestor
	pages          ingestion_engine.PageCounter
	maxUploadBytes int64
	log            *zap.Logger
}

// NewDocumentService wires the service. pages may be nil.
func NewDocumentService(records core.RecordStore, blobs core.BlobStore, ing ingestion_engine.Ingestor, pages ingestion_engine.PageCounter, maxUploadBytes int64, log *zap.Logger) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		records:        records,
		blobs:          blobs,
		ingestor:       ing,
		pages:          pages,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// UploadInput is one file received from a client.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Upload validates and stores the file, summarizes it best-effort and writes the record once.
// Type and size violations are returned as *core.PipelineError.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*models.Document, error) {
	log := logger.FromContextOr(ctx, s.log)

	mediaType := resolveMediaType(in.ContentType, in.Filename)
	if !mediaType.Supported() {
		return nil, core.NewPipelineError(core.PipelineUnsupportedType, nil)
	}
	if s.maxUploadBytes > 0 && int64(len(in.Data)) > s.maxUploadBytes {
		return nil, core.NewPipelineError(core.PipelinePayloadTooLarge, nil)
	}

	id := uuid.NewString()
	name := id + mediaType.Extension()

	key, err := s.blobs.Put(ctx, name, in.Data, string(mediaType))
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	blob := core.UploadedBlob{Data: in.Data, MediaType: mediaType, Size: int64(len(in.Data))}
	doc := &models.Document{
		ID:           id,
		Name:         name,
		OriginalName: filepath.Base(strings.TrimSpace(in.Filename)),
		StorageKey:   key,
		MediaType:    string(mediaType),
		SizeBytes:    blob.Size,
		Pages:        s.countPages(blob),
		UploadedAt:   time.Now().UTC(),
	}
	if summary, ok := s.ingestor.SummarizeOnUpload(ctx, blob); ok {
		doc.Summary = &summary
	}

	if err := s.records.CreateDocument(ctx, doc); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Warn("orphaned blob after failed insert", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	log.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("media_type", doc.MediaType),
		zap.Int64("size", doc.SizeBytes),
		zap.Bool("summarized", doc.HasSummary()))
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.records.ListDocuments(ctx)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.records.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Delete removes the record, then the blob. A failed blob delete is only logged.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.records.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		logger.FromContextOr(ctx, s.log).Warn("blob delete failed",
			zap.String("document_id", id), zap.String("key", doc.StorageKey), zap.Error(err))
	}
	return nil
}

// Ask answers a question about a stored document.
func (s *DocumentService) Ask(ctx context.Context, id, question string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.ingestor.AnswerQuestionByKey(ctx, doc.StorageKey, core.MediaType(doc.MediaType), question)
}

func (s *DocumentService) countPages(blob core.UploadedBlob) int {
	if s.pages == nil || blob.MediaType != core.MediaTypePDF {
		return 0
	}
	n, err := s.pages.CountPages(blob.Data)
	if err != nil {
		return 0
	}
	return n
}

// resolveMediaType trusts the declared type, falling back to the extension for generic types.
func resolveMediaType(contentType, filename string) core.MediaType {
	mt := core.ParseMediaType(contentType)
	if mt != core.MediaTypeUnsupported {
		return mt
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		return core.MediaTypeFromFilename(filename)
	}
	return core.MediaTypeUnsupported
}
