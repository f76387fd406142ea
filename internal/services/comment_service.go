package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/models"
)

var (
	ErrInvalidComment  = errors.New("documentId, text and author are required")
	ErrCommentNotFound = errors.New("comment not found")
)

type CommentService struct {
	records core.RecordStore
}

func NewCommentService(records core.RecordStore) *CommentService {
	return &CommentService{records: records}
}

// Create stores a comment on an existing document. All fields are required.
func (s *CommentService) Create(ctx context.Context, documentID, text, author string) (*models.Comment, error) {
	documentID, text, author = strings.TrimSpace(documentID), strings.TrimSpace(text), strings.TrimSpace(author)
	if documentID == "" || text == "" || author == "" {
		return nil, ErrInvalidComment
	}

	doc, err := s.records.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	c := &models.Comment{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Text:       text,
		Author:     author,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.records.CreateComment(ctx, c); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns the comments of one document, or every comment when documentID is empty.
func (s *CommentService) List(ctx context.Context, documentID string) ([]models.Comment, error) {
	return s.records.ListComments(ctx, strings.TrimSpace(documentID))
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.records.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}
