package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:04,000
welcome to the lecture

2
00:00:05,000 --> 00:00:08,000
first topic is indexing
`

type recordingStore struct {
	replaced []*models.VideoRecord
}

func (r *recordingStore) ReplaceVideo(ctx context.Context, v *models.VideoRecord) error {
	r.replaced = append(r.replaced, v)
	return nil
}

func TestIngestContent(t *testing.T) {
	c := corpus.New()
	store := &recordingStore{}
	svc := NewIngestService(c, store)

	video, err := svc.IngestContent(context.Background(), "lecture01.srt", []byte(sampleSRT))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if video.Title != "lecture01" || video.FileName != "lecture01.mp4" {
		t.Errorf("derived names wrong: title=%q file=%q", video.Title, video.FileName)
	}
	if !strings.HasPrefix(video.ID, "vid_") {
		t.Errorf("expected generated id with vid_ prefix, got %q", video.ID)
	}
	if len(video.Segments) != 2 {
		t.Errorf("expected 2 segments, got %d", len(video.Segments))
	}
	if c.Len() != 1 {
		t.Error("video was not registered in the corpus")
	}
	if len(store.replaced) != 1 {
		t.Error("video was not persisted")
	}
}

func TestIngestContentEmptyTranscript(t *testing.T) {
	svc := NewIngestService(corpus.New(), nil)
	if _, err := svc.IngestContent(context.Background(), "empty.srt", []byte("   \n\n  ")); err == nil {
		t.Fatal("expected an error for a file with no usable lines")
	}
}

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		name    string
		allowed bool
	}{
		{"a.srt", true},
		{"a.VTT", true},
		{"a.txt", true},
		{"a.mp4", false},
		{"a.pdf", false},
		{"noext", false},
	}
	for _, tc := range tests {
		if got := AllowedExt(tc.name); got != tc.allowed {
			t.Errorf("AllowedExt(%q) = %v, want %v", tc.name, got, tc.allowed)
		}
	}
}

func TestIngestBatch(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.srt", "b.srt", "c.srt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	// One unreadable entry and one with a bad extension.
	paths = append(paths, filepath.Join(dir, "missing.srt"))
	paths = append(paths, filepath.Join(dir, "movie.mp4"))

	svc := NewIngestService(corpus.New(), nil)

	var reports []int
	videos, failed := svc.IngestBatch(context.Background(), paths, func(done, total int, current string) {
		reports = append(reports, done)
		if total != 5 {
			t.Errorf("expected total 5, got %d", total)
		}
	})

	if len(videos) != 3 {
		t.Errorf("expected 3 ingested videos, got %d", len(videos))
	}
	if failed != 2 {
		t.Errorf("expected 2 failures, got %d", failed)
	}
	// Progress fires at the final file regardless of batch size.
	if len(reports) == 0 || reports[len(reports)-1] != 5 {
		t.Errorf("expected a final progress report at 5, got %v", reports)
	}
}

func TestIngestBatchCancellation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewIngestService(corpus.New(), nil)
	videos, failed := svc.IngestBatch(ctx, []string{path, path}, nil)
	if len(videos) != 0 || failed != 2 {
		t.Errorf("cancelled batch should process nothing: videos=%d failed=%d", len(videos), failed)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://example.com/video", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ExtractVideoID(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ExtractVideoID(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ExtractVideoID(%q) = %q, %v; want %q", tc.input, got, err, tc.want)
		}
	}
}
