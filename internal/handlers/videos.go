package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

// SegmentLoader fetches a transcript from the store when the in-memory
// copy only has metadata.
type SegmentLoader interface {
	SegmentsByVideo(ctx context.Context, videoID string) ([]models.TranscriptSegment, error)
}

type VideoHandler struct {
	corpus *corpus.Corpus
	loader SegmentLoader // nil without a store
}

func NewVideoHandler(c *corpus.Corpus, loader SegmentLoader) *VideoHandler {
	return &VideoHandler{corpus: c, loader: loader}
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos := h.corpus.Videos()
	summaries := make([]models.VideoSummary, len(videos))
	for i, v := range videos {
		summaries[i] = v.Summary()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": summaries})
}

// GetSegments returns one video's transcript, loading it from the store
// on first access.
func (h *VideoHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	video, ok := h.corpus.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Unknown video", r))
		return
	}

	if !video.SegmentsLoaded() {
		if h.loader == nil {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_LOADED", "Transcript is not loaded", r))
			return
		}
		segments, err := h.loader.SegmentsByVideo(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("STORE_ERROR", err.Error(), r))
			return
		}
		h.corpus.SetSegments(id, segments)
		video, _ = h.corpus.Get(id)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video_id": video.ID,
		"segments": video.Segments,
	})
}

// Export dumps the whole corpus as a JSON attachment, in the same shape
// the CORPUS_URL bootstrap accepts.
func (h *VideoHandler) Export(w http.ResponseWriter, r *http.Request) {
	videos := h.corpus.Videos()

	if h.loader != nil {
		for _, v := range videos {
			if v.SegmentsLoaded() {
				continue
			}
			segments, err := h.loader.SegmentsByVideo(r.Context(), v.ID)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, errorResp("STORE_ERROR", err.Error(), r))
				return
			}
			h.corpus.SetSegments(v.ID, segments)
		}
		videos = h.corpus.Videos()
	}

	filename := fmt.Sprintf("database_update_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, videos)
}
