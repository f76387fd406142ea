package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/markdave123-py/docquery/internal/services"
)

type ChatHandler struct {
	documents *services.DocumentService
}

func NewChatHandler(documents *services.DocumentService) *ChatHandler {
	return &ChatHandler{documents: documents}
}

type askRequest struct {
	DocumentID string `json:"documentId"`
	Question   string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask handles POST /api/ai/ask.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Missing documentId or question")
		return
	}

	answer, err := h.documents.Ask(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}
