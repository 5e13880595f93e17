package playback

import (
	"context"
	"fmt"
	"math"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

// seekTolerance is how far (seconds) a resolved segment start may drift
// from the requested time before we refuse to seek. Subtitle timings are
// second-granular, so anything past one second is a different cue.
const seekTolerance = 1.0

// MediaHandle is the player surface the sync index drives. Implemented
// by whatever fronts the actual media element; nil means resolve-only.
type MediaHandle interface {
	SetCurrentTime(seconds float64)
	Play()
}

// SegmentLoader fetches a video's transcript on demand, for results that
// arrived before the transcript was in memory.
type SegmentLoader interface {
	SegmentsByVideo(ctx context.Context, videoID string) ([]models.TranscriptSegment, error)
}

// SyncIndex turns a search result into a playback position: the ordinal
// of the segment to highlight and the seconds to seek to.
type SyncIndex struct {
	corpus *corpus.Corpus
	loader SegmentLoader // nil when no store is configured
	handle MediaHandle
}

func NewSyncIndex(c *corpus.Corpus, loader SegmentLoader) *SyncIndex {
	return &SyncIndex{corpus: c, loader: loader}
}

// Bind attaches a media handle. Resolve seeks it after each successful
// resolution.
func (s *SyncIndex) Bind(handle MediaHandle) {
	s.handle = handle
}

// Resolve maps a search result onto the target video's transcript and
// returns the segment to highlight. It prefers an exact start-time
// match; failing that it takes the segment whose start is nearest the
// result's time, within seekTolerance. The transcript is lazily loaded
// when the result was produced from a placeholder segment.
func (s *SyncIndex) Resolve(ctx context.Context, result models.SearchResult) (models.TranscriptSegment, error) {
	var none models.TranscriptSegment

	video, ok := s.corpus.Get(result.VideoID)
	if !ok {
		return none, fmt.Errorf("unknown video %q", result.VideoID)
	}

	if !video.SegmentsLoaded() {
		if s.loader == nil {
			return none, fmt.Errorf("transcript for %q is not loaded", video.ID)
		}
		segments, err := s.loader.SegmentsByVideo(ctx, video.ID)
		if err != nil {
			return none, fmt.Errorf("loading transcript for %q: %w", video.ID, err)
		}
		s.corpus.SetSegments(video.ID, segments)
		video, _ = s.corpus.Get(video.ID)
	}
	if len(video.Segments) == 0 {
		return none, fmt.Errorf("video %q has an empty transcript", video.ID)
	}

	target, matched := s.locate(video.Segments, result.Segment)
	if !matched {
		return none, fmt.Errorf("no segment within %.0fs of %s in %q",
			seekTolerance, result.Segment.StartTime, video.ID)
	}

	if s.handle != nil {
		s.handle.SetCurrentTime(target.StartSeconds)
		s.handle.Play()
	}
	return target, nil
}

func (s *SyncIndex) locate(segments []models.TranscriptSegment, want models.TranscriptSegment) (models.TranscriptSegment, bool) {
	for _, seg := range segments {
		if seg.StartTime == want.StartTime && seg.Text == want.Text {
			return seg, true
		}
	}

	// No exact cue: fall back to nearest start time within tolerance.
	best := segments[0]
	minDiff := math.Inf(1)
	for _, seg := range segments {
		diff := math.Abs(seg.StartSeconds - want.StartSeconds)
		if diff < minDiff {
			minDiff = diff
			best = seg
		}
	}
	if minDiff > seekTolerance {
		return models.TranscriptSegment{}, false
	}
	return best, true
}
