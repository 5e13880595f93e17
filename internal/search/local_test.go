package search

import (
	"context"
	"fmt"
	"testing"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

func testCorpus(videos ...*models.VideoRecord) *corpus.Corpus {
	c := corpus.New()
	for _, v := range videos {
		c.Upsert(v)
	}
	return c
}

func segmentsFromTexts(texts ...string) []models.TranscriptSegment {
	segs := make([]models.TranscriptSegment, len(texts))
	for i, text := range texts {
		segs[i] = models.TranscriptSegment{
			Ordinal:      i,
			StartTime:    fmt.Sprintf("00:00:%02d", i*10),
			EndTime:      fmt.Sprintf("00:00:%02d,000", i*10+9),
			Text:         text,
			StartSeconds: float64(i * 10),
		}
	}
	return segs
}

func TestLocalSearchDocumentLevelAND(t *testing.T) {
	// The document contains "apple" but never "banana": zero results,
	// even though individual segments match "apple".
	engine := NewLocalEngine(testCorpus(&models.VideoRecord{
		ID:       "v1",
		Title:    "Fruit",
		Segments: segmentsFromTexts("apple pie", "something else", "more apple talk"),
	}))

	results := engine.Search(context.Background(), "apple banana")
	if len(results) != 0 {
		t.Fatalf("expected 0 results when one token is absent from the document, got %d", len(results))
	}
}

func TestLocalSearchSegmentLevelOR(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("filler segment %d", i)
	}
	texts[2] = "here we discuss apple"
	texts[5] = "and here banana shows up"

	engine := NewLocalEngine(testCorpus(&models.VideoRecord{
		ID:       "v1",
		Title:    "Fruit",
		Segments: segmentsFromTexts(texts...),
	}))

	results := engine.Search(context.Background(), "apple banana")
	if len(results) != 2 {
		t.Fatalf("expected 2 results (one per matching segment), got %d", len(results))
	}

	if results[0].Segment.Ordinal != 2 || results[1].Segment.Ordinal != 5 {
		t.Errorf("expected ordinals 2 and 5, got %d and %d",
			results[0].Segment.Ordinal, results[1].Segment.Ordinal)
	}

	// Segment 2 sits near the start: only 2 segments before it, 6 after.
	first := results[0]
	if len(first.ContextBefore) != 2 {
		t.Errorf("expected 2 context segments before ordinal 2, got %d", len(first.ContextBefore))
	}
	if len(first.ContextAfter) != 6 {
		t.Errorf("expected 6 context segments after ordinal 2, got %d", len(first.ContextAfter))
	}
	if first.ContextBefore[0] != "filler segment 0" {
		t.Errorf("context not in ordinal order: %v", first.ContextBefore)
	}

	// Segment 5 has 4 following segments only.
	second := results[1]
	if len(second.ContextAfter) != 4 {
		t.Errorf("expected context clipped to 4 at video end, got %d", len(second.ContextAfter))
	}
}

func TestLocalSearchCaseInsensitive(t *testing.T) {
	engine := NewLocalEngine(testCorpus(&models.VideoRecord{
		ID:       "v1",
		Segments: segmentsFromTexts("The Quick Brown Fox"),
	}))

	if results := engine.Search(context.Background(), "QUICK fox"); len(results) != 1 {
		t.Fatalf("expected case-insensitive match, got %d results", len(results))
	}
}

func TestLocalSearchEmptyQuery(t *testing.T) {
	engine := NewLocalEngine(testCorpus(&models.VideoRecord{
		ID:       "v1",
		Segments: segmentsFromTexts("anything"),
	}))

	for _, q := range []string{"", "   ", "\t\n"} {
		if results := engine.Search(context.Background(), q); len(results) != 0 {
			t.Errorf("query %q should yield no results, got %d", q, len(results))
		}
	}
}

func TestLocalSearchSkipsUnloadedVideos(t *testing.T) {
	engine := NewLocalEngine(testCorpus(
		&models.VideoRecord{ID: "loaded", Segments: segmentsFromTexts("apple here")},
		&models.VideoRecord{ID: "unloaded", Segments: nil},
	))

	results := engine.Search(context.Background(), "apple")
	if len(results) != 1 || results[0].VideoID != "loaded" {
		t.Fatalf("expected only the loaded video to match, got %+v", results)
	}
}

func TestLocalSearchVideoThenOrdinalOrder(t *testing.T) {
	engine := NewLocalEngine(testCorpus(
		&models.VideoRecord{ID: "a", Segments: segmentsFromTexts("apple one", "apple two")},
		&models.VideoRecord{ID: "b", Segments: segmentsFromTexts("apple three")},
	))

	results := engine.Search(context.Background(), "apple")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	got := []string{results[0].VideoID, results[1].VideoID, results[2].VideoID}
	if got[0] != "a" || got[1] != "a" || got[2] != "b" {
		t.Errorf("expected video-then-ordinal order, got %v", got)
	}
	if results[0].Segment.Ordinal != 0 || results[1].Segment.Ordinal != 1 {
		t.Errorf("ordinal order broken within a video")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"One TWO  three", 3},
	}
	for _, tc := range tests {
		if got := Tokenize(tc.input); len(got) != tc.want {
			t.Errorf("Tokenize(%q) returned %d tokens, want %d", tc.input, len(got), tc.want)
		}
	}
	toks := Tokenize("Mixed CASE")
	if toks[0] != "mixed" || toks[1] != "case" {
		t.Errorf("tokens not lower-cased: %v", toks)
	}
}
