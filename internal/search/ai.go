package search

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"regexp"
	"strings"
	"time"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
	"videosearch-backend/internal/timecode"
)

// ErrKnowledgeBaseMissing means the reasoning backend answered but has no
// knowledge base attached. Unlike transport failures this is surfaced to
// the user: it is fixable by configuration, not by rephrasing the query.
var ErrKnowledgeBaseMissing = errors.New("reasoning backend has no knowledge base configured")

// aiFallbackCap bounds the substitute results returned when no backend
// is configured.
const aiFallbackCap = 5

// ReasoningBackend answers a free-text query with free-form text that is
// expected to embed a JSON array of suggestions.
type ReasoningBackend interface {
	Ask(ctx context.Context, query string) (string, error)
}

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// AIMapper delegates a query to a reasoning backend and maps each
// returned (video hint, timestamp) suggestion onto a concrete known
// segment.
type AIMapper struct {
	backend ReasoningBackend
	corpus  *corpus.Corpus
	local   *LocalEngine
	timeout time.Duration
}

func NewAIMapper(backend ReasoningBackend, c *corpus.Corpus, local *LocalEngine, timeout time.Duration) *AIMapper {
	return &AIMapper{backend: backend, corpus: c, local: local, timeout: timeout}
}

// Search asks the backend and resolves its suggestions. With no backend
// configured it degrades to the local engine, tagged as AI matches, so
// the mode stays usable. Transport errors and unparseable answers yield
// an empty list; only the missing-knowledge-base sentinel is an error.
func (m *AIMapper) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if m.backend == nil {
		return m.fallback(ctx, query), nil
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	raw, err := m.backend.Ask(ctx, query)
	if err != nil {
		log.Printf("reasoning backend call failed: %v", err)
		return nil, nil
	}

	if isKnowledgeBaseMissing(raw) {
		return nil, ErrKnowledgeBaseMissing
	}

	span := extractJSONSpan(raw)
	if span == "" {
		log.Printf("no JSON array found in reasoning response (%d bytes)", len(raw))
		return nil, nil
	}

	var suggestions []models.AISuggestion
	if err := json.Unmarshal([]byte(span), &suggestions); err != nil {
		log.Printf("failed to parse reasoning response: %v", err)
		return nil, nil
	}

	var results []models.SearchResult
	for _, s := range suggestions {
		video, ok := m.corpus.ResolveHint(s.VideoID)
		if !ok {
			continue
		}

		ts := s.Timestamp
		if ts == "" {
			ts = "00:00:00"
		}
		seconds := timecode.Parse(ts)

		var segment models.TranscriptSegment
		if video.SegmentsLoaded() && len(video.Segments) > 0 {
			segment = nearestSegment(video.Segments, seconds)
		} else {
			// Placeholder until the transcript loads; the playback sync
			// index reconciles it by nearest time.
			segment = models.TranscriptSegment{
				StartTime:    timecode.Truncate(ts),
				Text:         s.Quote,
				StartSeconds: seconds,
			}
		}

		rationale := s.Reasoning
		if rationale == "" {
			rationale = s.Quote
		}

		results = append(results, models.SearchResult{
			Video:      video,
			VideoID:    video.ID,
			VideoTitle: video.Title,
			Segment:    segment,
			MatchKind:  models.MatchAI,
			Rationale:  rationale,
			Quote:      s.Quote,
		})
	}
	return results, nil
}

func (m *AIMapper) fallback(ctx context.Context, query string) []models.SearchResult {
	results := m.local.Search(ctx, query)
	if len(results) > aiFallbackCap {
		results = results[:aiFallbackCap]
	}
	for i := range results {
		results[i].MatchKind = models.MatchAI
		results[i].Rationale = "关键词模拟匹配: " + results[i].Segment.Text
	}
	return results
}

// nearestSegment picks the segment minimizing |startSeconds - target|,
// ties broken by lower ordinal.
func nearestSegment(segments []models.TranscriptSegment, target float64) models.TranscriptSegment {
	best := segments[0]
	minDiff := math.Inf(1)
	for _, seg := range segments {
		diff := math.Abs(seg.StartSeconds - target)
		if diff < minDiff {
			minDiff = diff
			best = seg
		}
	}
	return best
}

// extractJSONSpan pulls the structured payload out of narrative text:
// first a fenced ```json block, else the span from the first '[' to the
// last ']'.
func extractJSONSpan(content string) string {
	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start != -1 && end > start {
		return content[start : end+1]
	}
	return ""
}

// isKnowledgeBaseMissing detects the backend's "no knowledge base"
// sentinel phrase, which appears as narrative text rather than a
// structured error.
func isKnowledgeBaseMissing(content string) bool {
	if !strings.Contains(content, "没有提供") {
		return false
	}
	return strings.Contains(content, "知识库") ||
		strings.Contains(strings.ToLower(content), "knowledge base")
}
