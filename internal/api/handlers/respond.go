package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/markdave123-py/docquery/internal/core"
	"github.com/markdave123-py/docquery/internal/logger"
	"github.com/markdave123-py/docquery/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// sentinelHandler maps errors matching sentinel to status. An empty message means publicMessage(err).
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := message
		if msg == "" {
			msg = publicMessage(err)
		}
		writeError(w, status, msg)
		return true
	}
}

// Order matters: specific completion kinds before the generic completion failure.
var domainErrorHandlers = []errorHandler{
	sentinelHandler(services.ErrDocumentNotFound, http.StatusNotFound, "Document not found"),
	sentinelHandler(services.ErrCommentNotFound, http.StatusNotFound, "Comment not found"),
	sentinelHandler(core.ErrBlobNotFound, http.StatusNotFound, "Could not retrieve document"),
	sentinelHandler(services.ErrInvalidComment, http.StatusBadRequest, ""),
	sentinelHandler(core.ErrInvalidQuestion, http.StatusBadRequest, ""),
	sentinelHandler(core.ErrUnsupportedDocument, http.StatusBadRequest, ""),
	sentinelHandler(core.ErrEmptyContent, http.StatusBadRequest, ""),
	sentinelHandler(core.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, ""),
	sentinelHandler(core.ErrDocumentUnreadable, http.StatusUnprocessableEntity, ""),
	sentinelHandler(core.ErrNotConfigured, http.StatusServiceUnavailable, ""),
	sentinelHandler(core.ErrRateLimited, http.StatusTooManyRequests, ""),
	sentinelHandler(core.ErrCompletionFailed, http.StatusBadGateway, ""),
}

// handleDomainError writes the mapped status, or 500 without internals.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range domainErrorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// publicMessage returns a message safe to show to clients.
func publicMessage(err error) string {
	var pe *core.PipelineError
	if errors.As(err, &pe) {
		return pe.Message()
	}
	var ce *core.CompletionError
	if errors.As(err, &ce) {
		return ce.Message()
	}
	for _, s := range []error{services.ErrInvalidComment, services.ErrDocumentNotFound, services.ErrCommentNotFound} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal server error"
}
