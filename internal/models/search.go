package models

// SearchMode selects the query backend.
type SearchMode string

const (
	ModeKeyword SearchMode = "keyword"
	ModeAI      SearchMode = "ai"
)

// MatchKind records which engine produced a result.
type MatchKind string

const (
	MatchKeyword MatchKind = "keyword"
	MatchAI      MatchKind = "ai"
)

// SearchResult is the uniform result shape every backend produces.
// Context windows hold the raw texts of up to 6 neighboring segments on
// each side, in ordinal order, clipped at video boundaries.
type SearchResult struct {
	Video         *VideoRecord      `json:"-"`
	VideoID       string            `json:"video_id"`
	VideoTitle    string            `json:"video_title"`
	Segment       TranscriptSegment `json:"segment"`
	MatchKind     MatchKind         `json:"match_kind"`
	ContextBefore []string          `json:"context_before,omitempty"`
	ContextAfter  []string          `json:"context_after,omitempty"`
	Rationale     string            `json:"rationale,omitempty"`
	Quote         string            `json:"quote,omitempty"`
}

// AISuggestion is one tuple from the reasoning backend's answer text.
// Every field is optional; the mapper defaults anything missing.
type AISuggestion struct {
	VideoID   string `json:"videoId"`
	Timestamp string `json:"timestamp"`
	Reasoning string `json:"reasoning"`
	Quote     string `json:"quote"`
}

// SearchRequest is the HTTP and websocket query payload.
type SearchRequest struct {
	Query string     `json:"query"`
	Mode  SearchMode `json:"mode"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
