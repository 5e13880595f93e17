package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/models"
)

// corpusFetchLimit caps a bootstrap download at 64MB.
const corpusFetchLimit = 64 * 1024 * 1024

// NormalizeCorpusURL rewrites a GitHub web URL to its raw content
// endpoint, since the web view serves an HTML page rather than the
// file. Anything else passes through untouched.
func NormalizeCorpusURL(url string) string {
	if strings.Contains(url, "github.com") && strings.Contains(url, "/blob/") {
		url = strings.Replace(url, "github.com", "raw.githubusercontent.com", 1)
		url = strings.Replace(url, "/blob/", "/", 1)
	}
	return url
}

// FetchCorpus downloads a JSON transcript database and merges it into
// the in-memory corpus. Records already present, such as metadata
// loaded from the database at startup, survive the bootstrap; a
// fetched record with a known id replaces that entry.
func FetchCorpus(ctx context.Context, c *corpus.Corpus, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", NormalizeCorpusURL(url), nil)
	if err != nil {
		return 0, fmt.Errorf("building corpus request: %w", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching corpus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("corpus fetch returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, corpusFetchLimit))
	if err != nil {
		return 0, fmt.Errorf("reading corpus body: %w", err)
	}

	var videos []*models.VideoRecord
	if err := json.Unmarshal(body, &videos); err != nil {
		return 0, fmt.Errorf("parsing corpus JSON: %w", err)
	}

	for _, v := range videos {
		c.Upsert(v)
	}
	return len(videos), nil
}
