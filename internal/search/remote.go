package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

// queryRowCap bounds the first-pass disjunctive query.
const queryRowCap = 100

// StoredSegment is a segment row as the remote store serves it. RowID is
// the store's own key, assigned contiguously per ingestion batch but not
// guaranteed contiguous across re-ingestions.
type StoredSegment struct {
	RowID        int64
	VideoID      string
	Ordinal      int
	StartTime    string
	EndTime      string
	Text         string
	StartSeconds float64
}

// SegmentStore is what the remote adapter needs from a segment store: a
// bounded disjunctive substring query and a batched fetch by row key.
type SegmentStore interface {
	QuerySegments(ctx context.Context, tokens []string, limit int) ([]StoredSegment, error)
	FetchByRowIDs(ctx context.Context, ids []int64) ([]StoredSegment, error)
}

// RemoteAdapter searches a remote segment store. The store can only OR
// per-token filters in one round trip, so the whole-document AND of the
// local engine is replicated client-side: a video is kept only when its
// matched rows jointly cover every token.
type RemoteAdapter struct {
	store   SegmentStore
	corpus  *corpus.Corpus
	timeout time.Duration
}

func NewRemoteAdapter(store SegmentStore, c *corpus.Corpus, timeout time.Duration) *RemoteAdapter {
	return &RemoteAdapter{store: store, corpus: c, timeout: timeout}
}

// Search never surfaces transport or query errors: any failure logs and
// yields an empty result list, which callers treat as "no matches".
func (a *RemoteAdapter) Search(ctx context.Context, query string) []models.SearchResult {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	rows, err := a.store.QuerySegments(ctx, tokens, queryRowCap)
	if err != nil {
		log.Printf("remote segment query failed: %v", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	neighbors, err := a.store.FetchByRowIDs(ctx, neighborIDs(rows))
	if err != nil {
		log.Printf("remote neighbor fetch failed: %v", err)
		return nil
	}
	byRowID := make(map[int64]StoredSegment, len(neighbors))
	for _, n := range neighbors {
		byRowID[n.RowID] = n
	}

	// Client-side AND re-filter: per video, union the tokens its matched
	// rows contain and keep only full coverage.
	coverage := make(map[string]map[string]struct{})
	var videoOrder []string
	grouped := make(map[string][]StoredSegment)
	for _, row := range rows {
		if _, seen := grouped[row.VideoID]; !seen {
			videoOrder = append(videoOrder, row.VideoID)
			coverage[row.VideoID] = make(map[string]struct{})
		}
		grouped[row.VideoID] = append(grouped[row.VideoID], row)
		lower := strings.ToLower(row.Text)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				coverage[row.VideoID][tok] = struct{}{}
			}
		}
	}

	var results []models.SearchResult
	for _, videoID := range videoOrder {
		if len(coverage[videoID]) != len(tokens) {
			continue
		}
		video, ok := a.corpus.Get(videoID)
		if !ok {
			video = &models.VideoRecord{ID: videoID}
		}
		for _, row := range grouped[videoID] {
			before, after := neighborContext(row, byRowID)
			results = append(results, models.SearchResult{
				Video:      video,
				VideoID:    video.ID,
				VideoTitle: video.Title,
				Segment: models.TranscriptSegment{
					Ordinal:      row.Ordinal,
					StartTime:    row.StartTime,
					EndTime:      row.EndTime,
					Text:         row.Text,
					StartSeconds: row.StartSeconds,
				},
				MatchKind:     models.MatchKeyword,
				ContextBefore: before,
				ContextAfter:  after,
			})
		}
	}
	return results
}

// neighborIDs expands every matched row to its ±contextRadius row keys.
// Missing keys are tolerated downstream: re-ingestion can leave gaps in
// the key sequence, and a gap simply means "no such neighbor".
func neighborIDs(rows []StoredSegment) []int64 {
	set := make(map[int64]struct{})
	for _, row := range rows {
		for d := int64(-contextRadius); d <= contextRadius; d++ {
			id := row.RowID + d
			if id > 0 {
				set[id] = struct{}{}
			}
		}
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// neighborContext splits the prefetched rows around a match into the ≤6
// preceding and ≤6 following texts, skipping rows that belong to another
// video or were never returned.
func neighborContext(row StoredSegment, byRowID map[int64]StoredSegment) (before, after []string) {
	for d := int64(contextRadius); d >= 1; d-- {
		if n, ok := byRowID[row.RowID-d]; ok && n.VideoID == row.VideoID {
			before = append(before, n.Text)
		}
	}
	for d := int64(1); d <= contextRadius; d++ {
		if n, ok := byRowID[row.RowID+d]; ok && n.VideoID == row.VideoID {
			after = append(after, n.Text)
		}
	}
	return before, after
}
