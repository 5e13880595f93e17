package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/search"
)

type SearchHandler struct {
	orchestrator *search.Orchestrator
}

func NewSearchHandler(orch *search.Orchestrator) *SearchHandler {
	return &SearchHandler{orchestrator: orch}
}

// Search runs one-shot queries over HTTP. Interactive typing should go
// through the websocket session instead, which debounces and cancels.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Mode != models.ModeAI {
		req.Mode = models.ModeKeyword
	}

	results, err := h.orchestrator.Dispatch(r.Context(), req.Query, req.Mode)
	if err != nil {
		if errors.Is(err, search.ErrKnowledgeBaseMissing) {
			writeJSON(w, http.StatusServiceUnavailable, errorResp("AI_NOT_CONFIGURED",
				"The AI assistant has no knowledge base configured", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("SEARCH_FAILED", err.Error(), r))
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"mode":    req.Mode,
		"results": results,
	})
}
