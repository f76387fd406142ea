package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/config"
	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/models"
)

// testRecordStore exercises the RecordStore contract against any implementation.
func testRecordStore(t *testing.T, store core.RecordStore) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	summary := "A summary."

	older := &models.Document{
		ID: uuid.NewString(), Name: "a.txt", OriginalName: "notes.txt", StorageKey: "a.txt",
		MediaType: "text/plain", SizeBytes: 12, UploadedAt: base.Add(-time.Minute),
	}
	newer := &models.Document{
		ID: uuid.NewString(), Name: "b.pdf", OriginalName: "report.pdf", StorageKey: "b.pdf",
		MediaType: "application/pdf", SizeBytes: 2048, Pages: 3, Summary: &summary, UploadedAt: base,
	}
	require.NoError(t, store.CreateDocument(ctx, older))
	require.NoError(t, store.CreateDocument(ctx, newer))

	got, err := store.GetDocumentByID(ctx, newer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "report.pdf", got.OriginalName)
	require.True(t, got.HasSummary())
	assert.Equal(t, summary, *got.Summary)
	assert.Equal(t, 3, got.Pages)

	got, err = store.GetDocumentByID(ctx, older.ID)
	require.NoError(t, err)
	assert.False(t, got.HasSummary())

	missing, err := store.GetDocumentByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Subset(t, ids, []string{older.ID, newer.ID})

	c1 := &models.Comment{ID: uuid.NewString(), DocumentID: newer.ID, Text: "first", Author: "ana", CreatedAt: base}
	c2 := &models.Comment{ID: uuid.NewString(), DocumentID: newer.ID, Text: "second", Author: "bo", CreatedAt: base.Add(time.Second)}
	c3 := &models.Comment{ID: uuid.NewString(), DocumentID: older.ID, Text: "other", Author: "cy", CreatedAt: base}
	for _, c := range []*models.Comment{c1, c2, c3} {
		require.NoError(t, store.CreateComment(ctx, c))
	}

	comments, err := store.ListComments(ctx, newer.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)

	require.NoError(t, store.DeleteComment(ctx, c1.ID))
	assert.ErrorIs(t, store.DeleteComment(ctx, c1.ID), core.ErrRecordNotFound)

	require.NoError(t, store.DeleteDocument(ctx, newer.ID))
	assert.ErrorIs(t, store.DeleteDocument(ctx, newer.ID), core.ErrRecordNotFound)

	comments, err = store.ListComments(ctx, newer.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	comments, err = store.ListComments(ctx, older.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	require.NoError(t, store.DeleteDocument(ctx, older.ID))
}

func TestMemoryClient(t *testing.T) {
	testRecordStore(t, NewMemoryClient())
}

func TestMemoryClient_ListNewestFirstAndIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryClient()
	now := time.Now()
	summary := "s"

	require.NoError(t, store.CreateDocument(ctx, &models.Document{ID: "old", UploadedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.CreateDocument(ctx, &models.Document{ID: "new", UploadedAt: now, Summary: &summary}))
	assert.Error(t, store.CreateDocument(ctx, &models.Document{ID: "new"}))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)

	*docs[0].Summary = "mutated"
	again, err := store.GetDocumentByID(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "s", *again.Summary)

	err = store.CreateComment(ctx, &models.Comment{ID: "c", DocumentID: "ghost"})
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

// TestDatabaseClient runs against a real Postgres when TEST_DATABASE_URL is set.
func TestDatabaseClient(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := NewDatabaseClient(context.Background(), &config.Config{DatabaseURL: url}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	testRecordStore(t, store)
}

func TestBuildDSN(t *testing.T) {
	_, err := buildDSN("", "")
	assert.Error(t, err)

	dsn, err := buildDSN("postgres://u:p@localhost:5432/docs", "")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/docs", dsn)

	_, err = buildDSN("postgres://u:p@localhost:5432/docs", filepath.Join(t.TempDir(), "missing.crt"))
	assert.Error(t, err)

	cert := filepath.Join(t.TempDir(), "root.crt")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	dsn, err = buildDSN("postgres://u:p@localhost:5432/docs", cert)
	require.NoError(t, err)
	assert.Contains(t, dsn, "sslmode=verify-ca")
	assert.Contains(t, dsn, "sslrootcert=")
}

func TestNew_SelectsBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{RecordStore: "memory"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, store)

	_, err = New(context.Background(), &config.Config{RecordStore: "mongo"}, zap.NewNop())
	assert.Error(t, err)
}
