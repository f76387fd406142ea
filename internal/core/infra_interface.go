package core

import (
	"context"
	"errors"
	"time"

	"github.com/markdave123-py/docquery/internal/models"
)

var (
	// ErrBlobNotFound is returned by BlobStore.Get for unknown keys. Stores that can tell also return it from Delete.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrRecordNotFound is returned by RecordStore deletes that matched nothing.
	ErrRecordNotFound = errors.New("record not found")
)

// BlobInfo describes one stored blob.
type BlobInfo struct {
	Key       string
	Size      int64
	CreatedAt time.Time
}

// BlobStore defines interactions with S3 or any object storage.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context) ([]BlobInfo, error)
	Delete(ctx context.Context, key string) error
}

// RecordStore defines the persistence operations for documents and comments.
// GetDocumentByID returns (nil, nil) when the document does not exist.
type RecordStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	// ListComments returns every comment when documentID is empty.
	ListComments(ctx context.Context, documentID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	Close() error
}
