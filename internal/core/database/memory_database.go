package db

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/models"
)

var _ core.RecordStore = (*MemoryClient)(nil)

// MemoryClient is a RecordStore held in process memory. Construct one per process or per test.
type MemoryClient struct {
	mu        sync.RWMutex
	documents map[string]models.Document
	comments  map[string]models.Comment
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		documents: make(map[string]models.Document),
		comments:  make(map[string]models.Comment),
	}
}

func (m *MemoryClient) Close() error { return nil }

func (m *MemoryClient) CreateDocument(_ context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	m.documents[doc.ID] = cloneDocument(*doc)
	return nil
}

func (m *MemoryClient) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, nil
	}
	d = cloneDocument(d)
	return &d, nil
}

// ListDocuments returns documents newest first.
func (m *MemoryClient) ListDocuments(_ context.Context) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Document, 0, len(m.documents))
	for _, d := range m.documents {
		out = append(out, cloneDocument(d))
	}
	slices.SortFunc(out, func(a, b models.Document) int {
		if c := b.UploadedAt.Compare(a.UploadedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteDocument removes the document and its comments.
func (m *MemoryClient) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return fmt.Errorf("%s: %w", id, core.ErrRecordNotFound)
	}
	delete(m.documents, id)
	for cid, c := range m.comments {
		if c.DocumentID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *MemoryClient) CreateComment(_ context.Context, comment *models.Comment) error {
	if comment == nil {
		return errors.New("nil comment")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[comment.DocumentID]; !ok {
		return fmt.Errorf("document %s: %w", comment.DocumentID, core.ErrRecordNotFound)
	}
	m.comments[comment.ID] = *comment
	return nil
}

// ListComments returns comments oldest first, all of them when documentID is empty.
func (m *MemoryClient) ListComments(_ context.Context, documentID string) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if documentID == "" || c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryClient) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return fmt.Errorf("%s: %w", id, core.ErrRecordNotFound)
	}
	delete(m.comments, id)
	return nil
}

func cloneDocument(d models.Document) models.Document {
	if d.Summary != nil {
		s := *d.Summary
		d.Summary = &s
	}
	return d
}
