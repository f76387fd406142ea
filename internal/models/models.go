package models

import (
	"time"
)

// Document is the metadata record of one uploaded file.
//
// Name is the stored file name ("<id>.pdf"), OriginalName the name the client uploaded,
// StorageKey the blob store key. Summary is nil when summarization was skipped or failed.
type Document struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	OriginalName string    `db:"original_name" json:"originalName"`
	StorageKey   string    `db:"storage_key" json:"storageKey"`
	MediaType    string    `db:"media_type" json:"type"`
	SizeBytes    int64     `db:"size_bytes" json:"size"`
	Pages        int       `db:"pages" json:"pages,omitempty"`
	Summary      *string   `db:"summary" json:"summary,omitempty"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// HasSummary reports whether a summary was stored for the document.
func (d *Document) HasSummary() bool {
	return d.Summary != nil
}

// Comment is a note left on a document.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"documentId"`
	Text       string    `db:"text" json:"text"`
	Author     string    `db:"author" json:"author"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
