package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"` // "transcript-ingest"
	ConfigJSON   json.RawMessage `json:"config"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	TotalFiles   int             `json:"total_files"`
	DoneFiles    int             `json:"done_files"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

// IngestJobConfig is the queued payload for a batch ingest job. Paths
// point at files already written under the storage directory.
type IngestJobConfig struct {
	Paths []string `json:"paths"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type IngestProgress struct {
	JobID       uuid.UUID `json:"job_id"`
	Processed   int       `json:"processed"`
	Total       int       `json:"total"`
	CurrentFile string    `json:"current_file"`
}

type IngestCompleted struct {
	JobID    uuid.UUID `json:"job_id"`
	Ingested int       `json:"ingested"`
	Failed   int       `json:"failed"`
	VideoIDs []string  `json:"video_ids"`
}

type IngestFailed struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorMessage string    `json:"error_message"`
}
