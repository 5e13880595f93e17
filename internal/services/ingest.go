package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
	"videosearch-backend/internal/subtitle"
)

// batchYieldEvery is how many files a batch processes between progress
// reports and scheduler yields.
const batchYieldEvery = 5

// VideoStore persists ingested videos. Nil store means in-memory only.
type VideoStore interface {
	ReplaceVideo(ctx context.Context, v *models.VideoRecord) error
}

// BatchProgress reports ingest progress to the caller after every few
// files and at the end.
type BatchProgress func(done, total int, current string)

// IngestService turns subtitle files into corpus entries.
type IngestService struct {
	corpus *corpus.Corpus
	store  VideoStore
}

func NewIngestService(c *corpus.Corpus, store VideoStore) *IngestService {
	return &IngestService{corpus: c, store: store}
}

// AllowedExt reports whether a filename looks like a subtitle file we
// can parse.
func AllowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".srt", ".vtt", ".txt":
		return true
	}
	return false
}

// IngestContent parses subtitle content and registers it as a video.
// The name (usually the uploaded filename) becomes the title; the video
// is assumed to have a sibling .mp4 next to the subtitle file.
func (s *IngestService) IngestContent(ctx context.Context, name string, content []byte) (*models.VideoRecord, error) {
	segments := subtitle.Parse(string(content))
	if len(segments) == 0 {
		return nil, fmt.Errorf("%s contains no usable transcript lines", name)
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	video := &models.VideoRecord{
		ID:         "vid_" + uuid.New().String(),
		Title:      base,
		FileName:   base + ".mp4",
		UploadDate: time.Now(),
		Segments:   segments,
	}

	s.corpus.Upsert(video)
	if s.store != nil {
		if err := s.store.ReplaceVideo(ctx, video); err != nil {
			return nil, fmt.Errorf("persisting %s: %w", video.ID, err)
		}
	}
	return video, nil
}

// IngestFile reads and ingests one subtitle file from disk.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*models.VideoRecord, error) {
	if !AllowedExt(path) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Base(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.IngestContent(ctx, path, content)
}

// IngestYouTube pulls a video's captions and registers them like an
// uploaded subtitle file.
func (s *IngestService) IngestYouTube(ctx context.Context, yt *YouTubeService, url string) (*models.VideoRecord, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	segments, err := yt.FetchTimedTranscript(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript for %s: %w", videoID, err)
	}

	publicURL := "https://www.youtube.com/watch?v=" + videoID
	video := &models.VideoRecord{
		ID:         "yt_" + videoID,
		Title:      yt.FetchTitle(videoID),
		FileName:   videoID + ".mp4",
		UploadDate: time.Now(),
		PublicURL:  &publicURL,
		Segments:   segments,
	}

	s.corpus.Upsert(video)
	if s.store != nil {
		if err := s.store.ReplaceVideo(ctx, video); err != nil {
			return nil, fmt.Errorf("persisting %s: %w", video.ID, err)
		}
	}
	return video, nil
}

// IngestBatch processes files in order, yielding the scheduler and
// reporting progress every few files so a large batch does not starve
// interactive queries. Files that fail are skipped, not fatal; the
// error count comes back with the ingested videos.
func (s *IngestService) IngestBatch(ctx context.Context, paths []string, progress BatchProgress) ([]*models.VideoRecord, int) {
	var (
		videos []*models.VideoRecord
		failed int
	)
	total := len(paths)

	for i, path := range paths {
		if ctx.Err() != nil {
			return videos, failed + (total - i)
		}

		video, err := s.IngestFile(ctx, path)
		if err != nil {
			failed++
		} else {
			videos = append(videos, video)
		}

		done := i + 1
		if done%batchYieldEvery == 0 || done == total {
			if progress != nil {
				progress(done, total, filepath.Base(path))
			}
			runtime.Gosched()
		}
	}
	return videos, failed
}
