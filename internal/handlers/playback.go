package handlers

import (
	"encoding/json"
	"net/http"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/playback"
)

type PlaybackHandler struct {
	sync *playback.SyncIndex
}

func NewPlaybackHandler(sync *playback.SyncIndex) *PlaybackHandler {
	return &PlaybackHandler{sync: sync}
}

// Locate resolves a search result to the segment to highlight and the
// position to seek the player to.
func (h *PlaybackHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var result models.SearchResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if result.VideoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "video_id is required", r))
		return
	}

	segment, err := h.sync.Resolve(r.Context(), result)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("UNRESOLVABLE", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video_id":     result.VideoID,
		"ordinal":      segment.Ordinal,
		"seek_seconds": segment.StartSeconds,
	})
}
