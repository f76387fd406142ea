package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/models"
)

func twoPagePDF(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "core", "ingestion_engine", "testdata", "two_pages.pdf"))
	require.NoError(t, err)
	return data
}

func TestNewExtractor_NoPageCountOrOwnTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ExtractTimeout = time.Nanosecond

	e, err := newExtractor(cfg, zap.NewNop())
	require.NoError(t, err)

	got, err := e.Extract(context.Background(), core.NewUploadedBlob(twoPagePDF(t), "application/pdf"))

	require.NoError(t, err)
	assert.Equal(t, "First page text\nSecond page text", got.Text)
	assert.Zero(t, got.Pages)
}

func TestUploadPDF_RecordsPageCount(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="report.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(twoPagePDF(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var doc models.Document
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&doc))
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, "application/pdf", doc.MediaType)
}
