package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"videosearch-backend/internal/models"
)

// fakeStore serves segments out of a slice, emulating the remote store's
// OR-only substring query.
type fakeStore struct {
	rows     []StoredSegment
	queryErr error
	fetchErr error
}

func (f *fakeStore) QuerySegments(ctx context.Context, tokens []string, limit int) ([]StoredSegment, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []StoredSegment
	for _, row := range f.rows {
		lower := strings.ToLower(row.Text)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				out = append(out, row)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) FetchByRowIDs(ctx context.Context, ids []int64) ([]StoredSegment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	byID := make(map[int64]StoredSegment, len(f.rows))
	for _, row := range f.rows {
		byID[row.RowID] = row
	}
	var out []StoredSegment
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func storeRows(videoID string, firstRowID int64, texts ...string) []StoredSegment {
	rows := make([]StoredSegment, len(texts))
	for i, text := range texts {
		rows[i] = StoredSegment{
			RowID:        firstRowID + int64(i),
			VideoID:      videoID,
			Ordinal:      i,
			StartTime:    "00:00:00",
			EndTime:      "00:00:05,000",
			Text:         text,
			StartSeconds: float64(i * 5),
		}
	}
	return rows
}

func TestRemoteSearchANDRefilter(t *testing.T) {
	// Video "both" covers apple and banana across its matched rows; video
	// "only" matches apple alone and must be filtered out client-side.
	rows := storeRows("both", 1, "apple here", "filler", "banana there")
	rows = append(rows, storeRows("only", 100, "apple again")...)

	adapter := NewRemoteAdapter(&fakeStore{rows: rows}, testCorpus(
		&models.VideoRecord{ID: "both", Title: "Both"},
		&models.VideoRecord{ID: "only", Title: "Only"},
	), 0)

	results := adapter.Search(context.Background(), "apple banana")
	if len(results) != 2 {
		t.Fatalf("expected 2 results from the covering video, got %d", len(results))
	}
	for _, r := range results {
		if r.VideoID != "both" {
			t.Errorf("video without full token coverage leaked through: %s", r.VideoID)
		}
	}
}

func TestRemoteSearchNeighborContext(t *testing.T) {
	texts := make([]string, 15)
	for i := range texts {
		texts[i] = "filler"
	}
	texts[7] = "the apple segment"
	rows := storeRows("v1", 10, texts...)

	adapter := NewRemoteAdapter(&fakeStore{rows: rows}, testCorpus(
		&models.VideoRecord{ID: "v1", Title: "Video"},
	), 0)

	results := adapter.Search(context.Background(), "apple")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if len(r.ContextBefore) != 6 {
		t.Errorf("expected 6 preceding context rows, got %d", len(r.ContextBefore))
	}
	if len(r.ContextAfter) != 6 {
		t.Errorf("expected 6 following context rows, got %d", len(r.ContextAfter))
	}
}

func TestRemoteSearchToleratesRowGaps(t *testing.T) {
	// Rows 1 and 3 exist, row 2 was deleted. Context should include what
	// is fetchable and skip the hole.
	rows := []StoredSegment{
		{RowID: 1, VideoID: "v1", Ordinal: 0, Text: "before"},
		{RowID: 3, VideoID: "v1", Ordinal: 2, Text: "apple match"},
		{RowID: 4, VideoID: "v1", Ordinal: 3, Text: "after"},
	}

	adapter := NewRemoteAdapter(&fakeStore{rows: rows}, testCorpus(
		&models.VideoRecord{ID: "v1"},
	), 0)

	results := adapter.Search(context.Background(), "apple")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if len(r.ContextBefore) != 1 || r.ContextBefore[0] != "before" {
		t.Errorf("expected gap-tolerant before context, got %v", r.ContextBefore)
	}
	if len(r.ContextAfter) != 1 || r.ContextAfter[0] != "after" {
		t.Errorf("expected after context, got %v", r.ContextAfter)
	}
}

func TestRemoteSearchExcludesOtherVideoNeighbors(t *testing.T) {
	// Adjacent row ids straddle a video boundary: the neighbor belongs to
	// another video and must not bleed into context.
	rows := []StoredSegment{
		{RowID: 5, VideoID: "a", Ordinal: 9, Text: "tail of a"},
		{RowID: 6, VideoID: "b", Ordinal: 0, Text: "apple opener"},
	}

	adapter := NewRemoteAdapter(&fakeStore{rows: rows}, testCorpus(
		&models.VideoRecord{ID: "a"},
		&models.VideoRecord{ID: "b"},
	), 0)

	results := adapter.Search(context.Background(), "apple")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].ContextBefore) != 0 {
		t.Errorf("neighbor from another video leaked into context: %v", results[0].ContextBefore)
	}
}

func TestRemoteSearchStoreErrors(t *testing.T) {
	adapter := NewRemoteAdapter(&fakeStore{queryErr: errors.New("down")}, testCorpus(), 0)
	if results := adapter.Search(context.Background(), "apple"); len(results) != 0 {
		t.Errorf("query error should yield empty results, got %d", len(results))
	}

	rows := storeRows("v1", 1, "apple")
	adapter = NewRemoteAdapter(&fakeStore{rows: rows, fetchErr: errors.New("down")}, testCorpus(), 0)
	if results := adapter.Search(context.Background(), "apple"); len(results) != 0 {
		t.Errorf("neighbor fetch error should yield empty results, got %d", len(results))
	}
}

func TestRemoteSearchUnknownVideoStub(t *testing.T) {
	// The store can return rows for a video the metadata corpus has not
	// seen yet; results still carry the id.
	rows := storeRows("ghost", 1, "apple")
	adapter := NewRemoteAdapter(&fakeStore{rows: rows}, testCorpus(), 0)

	results := adapter.Search(context.Background(), "apple")
	if len(results) != 1 || results[0].VideoID != "ghost" {
		t.Fatalf("expected stub result for unknown video, got %+v", results)
	}
}
