package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/docquery/internal/core"
	db "github.com/markdave123-py/docquery/internal/core/database"
	"github.com/markdave123-py/docquery/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/docquery/internal/core/object-client"
)

type stubCompleter struct {
	mu         sync.Mutex
	configured bool
	reply      string
	calls      int
}

func (s *stubCompleter) Complete(context.Context, core.Prompt, core.CompletionOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if !s.configured {
		return "", core.NewCompletionError(core.CompletionNotConfigured, "", 0, nil)
	}
	return s.reply, nil
}

func (s *stubCompleter) Configured() bool { return s.configured }

type fixture struct {
	docs      *DocumentService
	comments  *CommentService
	records   *db.MemoryClient
	blobs     *objectclient.MemoryStore
	completer *stubCompleter
}

func newFixture(completer *stubCompleter, maxUpload int64) *fixture {
	records := db.NewMemoryClient()
	blobs := objectclient.NewMemoryStore()
	cfg := ingestion_engine.DefaultPipelineConfig()
	cfg.MaxBlobBytes = maxUpload
	pipeline := ingestion_engine.NewPipeline(ingestion_engine.NewDocumentExtractor(nil, nil, 0, nil), completer, blobs, cfg, nil)
	return &fixture{
		docs:      NewDocumentService(records, blobs, pipeline, nil, maxUpload, nil),
		comments:  NewCommentService(records),
		records:   records,
		blobs:     blobs,
		completer: completer,
	}
}

func TestUpload_StoresBlobAndRecordWithSummary(t *testing.T) {
	f := newFixture(&stubCompleter{configured: true, reply: "Short summary."}, 1<<20)
	ctx := context.Background()

	doc, err := f.docs.Upload(ctx, UploadInput{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("Meeting notes.")})
	require.NoError(t, err)

	assert.Equal(t, doc.ID+".txt", doc.Name)
	assert.Equal(t, "notes.txt", doc.OriginalName)
	assert.Equal(t, "text/plain", doc.MediaType)
	assert.Equal(t, int64(14), doc.SizeBytes)
	require.True(t, doc.HasSummary())
	assert.Equal(t, "Short summary.", *doc.Summary)

	stored, err := f.blobs.Get(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "Meeting notes.", string(stored))

	got, err := f.docs.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestUpload_WithoutCredentialHasNoSummary(t *testing.T) {
	f := newFixture(&stubCompleter{configured: false}, 1<<20)

	doc, err := f.docs.Upload(context.Background(), UploadInput{Filename: "a.txt", ContentType: "text/plain", Data: []byte("content")})

	require.NoError(t, err)
	assert.False(t, doc.HasSummary())
	assert.Zero(t, f.completer.calls)
}

func TestUpload_NotActuallyPDFStillStored(t *testing.T) {
	f := newFixture(&stubCompleter{configured: true, reply: "x"}, 1<<20)

	doc, err := f.docs.Upload(context.Background(), UploadInput{Filename: "fake.pdf", ContentType: "application/pdf", Data: []byte("not a pdf")})

	require.NoError(t, err)
	assert.False(t, doc.HasSummary())
	assert.Zero(t, f.completer.calls)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   UploadInput
		want error
	}{
		{"image", UploadInput{Filename: "a.png", ContentType: "image/png", Data: []byte("png")}, core.ErrUnsupportedDocument},
		{"octet stream docx", UploadInput{Filename: "a.docx", ContentType: "application/octet-stream", Data: []byte("x")}, core.ErrUnsupportedDocument},
		{"too large", UploadInput{Filename: "a.txt", ContentType: "text/plain", Data: []byte(strings.Repeat("x", 65))}, core.ErrPayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&stubCompleter{configured: true}, 64)

			_, err := f.docs.Upload(context.Background(), tt.in)

			require.ErrorIs(t, err, tt.want)
			blobs, _ := f.blobs.List(context.Background())
			assert.Empty(t, blobs)
			docs, _ := f.docs.List(context.Background())
			assert.Empty(t, docs)
		})
	}
}

func TestUpload_OctetStreamFallsBackToExtension(t *testing.T) {
	f := newFixture(&stubCompleter{}, 1<<20)

	doc, err := f.docs.Upload(context.Background(), UploadInput{Filename: "readme.TXT", ContentType: "application/octet-stream", Data: []byte("hi")})

	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.MediaType)
}

func TestAsk(t *testing.T) {
	f := newFixture(&stubCompleter{configured: true, reply: "42"}, 1<<20)
	ctx := context.Background()
	doc, err := f.docs.Upload(ctx, UploadInput{Filename: "a.txt", ContentType: "text/plain", Data: []byte("The answer is 42.")})
	require.NoError(t, err)

	answer, err := f.docs.Ask(ctx, doc.ID, "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)

	_, err = f.docs.Ask(ctx, "missing", "q")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, f.blobs.Delete(ctx, doc.StorageKey))
	_, err = f.docs.Ask(ctx, doc.ID, "q")
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
}

func TestAsk_EmptyDocument(t *testing.T) {
	f := newFixture(&stubCompleter{configured: true, reply: "x"}, 1<<20)
	ctx := context.Background()
	doc, err := f.docs.Upload(ctx, UploadInput{Filename: "empty.txt", ContentType: "text/plain", Data: nil})
	require.NoError(t, err)
	calls := f.completer.calls

	_, err = f.docs.Ask(ctx, doc.ID, "anything?")

	assert.ErrorIs(t, err, core.ErrEmptyContent)
	assert.Equal(t, calls, f.completer.calls)
}

func TestDelete_RemovesRecordCommentsAndBlob(t *testing.T) {
	f := newFixture(&stubCompleter{}, 1<<20)
	ctx := context.Background()
	doc, err := f.docs.Upload(ctx, UploadInput{Filename: "a.txt", ContentType: "text/plain", Data: []byte("x")})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, doc.ID, "nice", "ana")
	require.NoError(t, err)

	require.NoError(t, f.docs.Delete(ctx, doc.ID))

	_, err = f.docs.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	_, err = f.blobs.Get(ctx, doc.StorageKey)
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
	comments, err := f.comments.List(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, f.docs.Delete(ctx, doc.ID), ErrDocumentNotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(&stubCompleter{}, 1<<20)
	ctx := context.Background()
	doc, err := f.docs.Upload(ctx, UploadInput{Filename: "a.txt", ContentType: "text/plain", Data: []byte("x")})
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, doc.ID, "  ", "ana")
	assert.ErrorIs(t, err, ErrInvalidComment)
	_, err = f.comments.Create(ctx, "ghost", "text", "ana")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	c, err := f.comments.Create(ctx, doc.ID, " looks good ", "ana")
	require.NoError(t, err)
	assert.Equal(t, "looks good", c.Text)

	all, err := f.comments.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.comments.Delete(ctx, c.ID))
	assert.ErrorIs(t, f.comments.Delete(ctx, c.ID), ErrCommentNotFound)
}
