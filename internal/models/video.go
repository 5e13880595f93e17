package models

import "time"

// TranscriptSegment is one time-coded cue of a video transcript.
// Ordinals are 0-based and contiguous within a video; StartTime is the
// display form truncated to whole seconds while StartSeconds keeps the
// full precision of the source time-code.
type TranscriptSegment struct {
	Ordinal      int     `json:"ordinal"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
}

// VideoRecord is one video known to the corpus. Segments may be nil when
// only metadata has been loaded (remote mode); a nil slice means "not yet
// loaded", an empty non-nil slice means "loaded, no cues".
type VideoRecord struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	FileName   string              `json:"file_name"`
	UploadDate time.Time           `json:"upload_date"`
	PublicURL  *string             `json:"public_url,omitempty"`
	Segments   []TranscriptSegment `json:"segments"`
}

// SegmentsLoaded reports whether the transcript has been populated.
func (v *VideoRecord) SegmentsLoaded() bool {
	return v.Segments != nil
}

// VideoSummary is the metadata-only listing shape.
type VideoSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	FileName       string    `json:"file_name"`
	UploadDate     time.Time `json:"upload_date"`
	PublicURL      *string   `json:"public_url,omitempty"`
	SegmentCount   int       `json:"segment_count"`
	SegmentsLoaded bool      `json:"segments_loaded"`
}

func (v *VideoRecord) Summary() VideoSummary {
	return VideoSummary{
		ID:             v.ID,
		Title:          v.Title,
		FileName:       v.FileName,
		UploadDate:     v.UploadDate,
		PublicURL:      v.PublicURL,
		SegmentCount:   len(v.Segments),
		SegmentsLoaded: v.SegmentsLoaded(),
	}
}
