package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/config"
	db "github.com/markdave123-py/docquery/internal/core/database"
	"github.com/markdave123-py/docquery/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/docquery/internal/core/object-client"
	"github.com/markdave123-py/docquery/internal/metrics"
	"github.com/markdave123-py/docquery/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                "local",
		Port:               "0",
		BlobStore:          "memory",
		RecordStore:        "memory",
		AIProvider:         "openai",
		MaxExcerptChars:    10000,
		MaxUploadBytes:     1 << 20,
		SummaryMaxTokens:   300,
		SummaryTemperature: 0.5,
		AnswerMaxTokens:    500,
		AnswerTemperature:  0.7,
		ExtractTimeout:     5 * time.Second,
		CompletionTimeout:  5 * time.Second,
		CORSOrigins:        []string{"http://localhost:5173"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	metrics.Register()
	cfg := testConfig()
	records := db.NewMemoryClient()
	blobs := objectclient.NewMemoryStore()
	pipeline, closeFn, err := NewPipeline(context.Background(), cfg, blobs, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	docs := services.NewDocumentService(records, blobs, pipeline, ingestion_engine.NewPdfcpuPageCounter(), cfg.MaxUploadBytes, zap.NewNop())
	return NewRouter(cfg, zap.NewNop(), docs, services.NewCommentService(records))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestRouter_APIRoutes(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/documents", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/comments", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/documents/missing", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Unknown documents fail before the completion client is consulted.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ai/ask", bytes.NewBufferString(`{"documentId":"x","question":"q"}`)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/documents", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/documents", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPipelineConfig(t *testing.T) {
	pc := PipelineConfig(testConfig())

	assert.Equal(t, 10000, pc.MaxExcerptChars)
	assert.Equal(t, int64(1<<20), pc.MaxBlobBytes)
	assert.Equal(t, 300, pc.Summary.MaxTokens)
	require.NotNil(t, pc.Answer.Temperature)
	assert.InDelta(t, 0.7, *pc.Answer.Temperature, 1e-6)
}

func TestNewPipeline_RejectsUnknownPDFBackend(t *testing.T) {
	cfg := testConfig()
	cfg.PDFBackend = "tesseract"

	_, _, err := NewPipeline(context.Background(), cfg, nil, zap.NewNop())

	assert.Error(t, err)
}
