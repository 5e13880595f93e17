// Package search implements the query backends (local, remote, AI) and
// the orchestrator that dispatches between them.
package search

import (
	"context"
	"strings"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

// contextRadius is how many neighboring segments are attached on each
// side of a match, clipped at video boundaries.
const contextRadius = 6

// Tokenize splits a query on whitespace and lower-cases the terms.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// LocalEngine matches against fully materialized transcripts in memory.
//
// Matching is two-level: a video is a candidate only if its whole
// document (all segment texts concatenated) contains every token, then
// every segment containing at least one token is emitted. The
// document-level AND keeps out videos that only coincidentally contain
// one keyword; the segment-level OR surfaces every usable jump target,
// since all keywords rarely land in the same cue.
type LocalEngine struct {
	corpus *corpus.Corpus
}

func NewLocalEngine(c *corpus.Corpus) *LocalEngine {
	return &LocalEngine{corpus: c}
}

// Search returns matches in video-then-ordinal order. No relevance
// scoring is applied.
func (e *LocalEngine) Search(ctx context.Context, query string) []models.SearchResult {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var results []models.SearchResult
	for _, video := range e.corpus.Videos() {
		if ctx.Err() != nil {
			return results
		}
		if !video.SegmentsLoaded() {
			continue
		}

		var doc strings.Builder
		for _, seg := range video.Segments {
			doc.WriteString(strings.ToLower(seg.Text))
			doc.WriteByte('\n')
		}
		if !containsAll(doc.String(), tokens) {
			continue
		}

		for i, seg := range video.Segments {
			if !containsAny(strings.ToLower(seg.Text), tokens) {
				continue
			}
			results = append(results, models.SearchResult{
				Video:         video,
				VideoID:       video.ID,
				VideoTitle:    video.Title,
				Segment:       seg,
				MatchKind:     models.MatchKeyword,
				ContextBefore: contextBefore(video.Segments, i),
				ContextAfter:  contextAfter(video.Segments, i),
			})
		}
	}
	return results
}

func containsAll(doc string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(doc, tok) {
			return false
		}
	}
	return true
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

func contextBefore(segments []models.TranscriptSegment, i int) []string {
	start := i - contextRadius
	if start < 0 {
		start = 0
	}
	var out []string
	for _, seg := range segments[start:i] {
		out = append(out, seg.Text)
	}
	return out
}

func contextAfter(segments []models.TranscriptSegment, i int) []string {
	end := i + 1 + contextRadius
	if end > len(segments) {
		end = len(segments)
	}
	var out []string
	for _, seg := range segments[i+1 : end] {
		out = append(out, seg.Text)
	}
	return out
}
