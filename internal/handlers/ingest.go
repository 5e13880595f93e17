package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/services"
	"videosearch-backend/internal/worker"
)

// maxUploadBytes caps a whole multipart upload at 128MB.
const maxUploadBytes = 128 << 20

type IngestHandler struct {
	ingest      *services.IngestService
	youtube     *services.YouTubeService
	pool        *worker.Pool // nil without redis; uploads process inline
	storagePath string
}

func NewIngestHandler(ingest *services.IngestService, youtube *services.YouTubeService, pool *worker.Pool, storagePath string) *IngestHandler {
	return &IngestHandler{
		ingest:      ingest,
		youtube:     youtube,
		pool:        pool,
		storagePath: storagePath,
	}
}

// Upload accepts one or more subtitle files. With a worker pool the
// files are staged to disk and a job id comes back immediately; without
// one the batch is parsed inline and the response carries the videos.
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No files uploaded", r))
		return
	}
	for _, fh := range files {
		if !services.AllowedExt(fh.Filename) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR",
				fmt.Sprintf("Unsupported file type: %s", fh.Filename), r))
			return
		}
	}

	if h.pool != nil {
		h.uploadAsync(w, r, files)
		return
	}
	h.uploadInline(w, r, files)
}

func (h *IngestHandler) uploadAsync(w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader) {
	batchDir := filepath.Join(h.storagePath, uuid.New().String())
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("STORAGE_ERROR", "Failed to stage upload", r))
		return
	}

	paths, err := stageUploads(batchDir, files)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("STORAGE_ERROR", "Failed to stage upload", r))
		return
	}

	config, _ := json.Marshal(models.IngestJobConfig{Paths: paths})
	job := &models.Job{
		Type:       "transcript-ingest",
		ConfigJSON: config,
		TotalFiles: len(paths),
	}
	if err := h.pool.Enqueue(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("QUEUE_ERROR", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":      job.ID,
		"total_files": job.TotalFiles,
	})
}

func (h *IngestHandler) uploadInline(w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader) {
	var (
		videos []models.VideoSummary
		failed int
	)
	for _, fh := range files {
		content, err := readUpload(fh)
		if err != nil {
			failed++
			continue
		}
		video, err := h.ingest.IngestContent(r.Context(), fh.Filename, content)
		if err != nil {
			failed++
			continue
		}
		videos = append(videos, video.Summary())
	}

	if len(videos) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("INGEST_FAILED",
			fmt.Sprintf("All %d files failed to ingest", failed), r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": videos,
		"failed": failed,
	})
}

// IngestYouTube pulls captions for one YouTube URL and registers the
// video.
func (h *IngestHandler) IngestYouTube(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "url is required", r))
		return
	}

	video, err := h.ingest.IngestYouTube(r.Context(), h.youtube, req.URL)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("INGEST_FAILED", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"video": video.Summary()})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// stageUploads writes each file under its own numbered subdirectory of
// batchDir. The worker derives the video title from the staged base
// name, so the client's name must be preserved, and two files sharing
// a name in one batch must not share a path.
func stageUploads(batchDir string, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for i, fh := range files {
		dir := filepath.Join(batchDir, strconv.Itoa(i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, filepath.Base(fh.Filename))
		if err := saveUpload(fh, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func saveUpload(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
