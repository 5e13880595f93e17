// Package corpus holds the process-wide set of known videos. It is the
// single mutation point for ingestion; search paths read a snapshot. No
// concurrent writers are assumed beyond the ingestion path, so a plain
// RWMutex over the registry is enough.
package corpus

import (
	"strings"
	"sync"

	"videosearch-backend/internal/models"
)

type Corpus struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.VideoRecord
}

func New() *Corpus {
	return &Corpus{byID: make(map[string]*models.VideoRecord)}
}

// ReplaceAll swaps the whole corpus, preserving the given order. Used by
// the remote bootstrap paths.
func (c *Corpus) ReplaceAll(videos []*models.VideoRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = c.order[:0]
	c.byID = make(map[string]*models.VideoRecord, len(videos))
	for _, v := range videos {
		if v == nil || v.ID == "" {
			continue
		}
		if _, exists := c.byID[v.ID]; !exists {
			c.order = append(c.order, v.ID)
		}
		c.byID[v.ID] = v
	}
}

// Upsert adds a video or replaces the record with the same ID.
func (c *Corpus) Upsert(v *models.VideoRecord) {
	if v == nil || v.ID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[v.ID]; !exists {
		c.order = append(c.order, v.ID)
	}
	c.byID[v.ID] = v
}

// Videos returns the current snapshot in insertion order.
func (c *Corpus) Videos() []*models.VideoRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.VideoRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Corpus) Get(id string) (*models.VideoRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.byID[id]
	return v, ok
}

func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// SetSegments populates a lazily loaded transcript. Reports whether the
// video exists.
func (c *Corpus) SetSegments(id string, segments []models.TranscriptSegment) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.byID[id]
	if !ok {
		return false
	}
	if segments == nil {
		segments = []models.TranscriptSegment{}
	}
	v.Segments = segments
	return true
}

// ResolveHint maps a loose video identifier coming from the reasoning
// backend to a record: exact ID first, then case-insensitive substring of
// the title, then of the file name. First match in corpus order wins. An
// empty hint identifies nothing.
func (c *Corpus) ResolveHint(hint string) (*models.VideoRecord, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.byID[hint]; ok {
		return v, true
	}

	lower := strings.ToLower(hint)
	for _, id := range c.order {
		if strings.Contains(strings.ToLower(c.byID[id].Title), lower) {
			return c.byID[id], true
		}
	}
	for _, id := range c.order {
		if strings.Contains(strings.ToLower(c.byID[id].FileName), lower) {
			return c.byID[id], true
		}
	}
	return nil, false
}
