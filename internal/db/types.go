package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Resume is a stored resume.
type Resume struct {
	ID           uuid.UUID       `json:"id"`
	UserID       string          `json:"userId"`
	Filename     string          `json:"filename,omitempty"`
	OriginalText string          `json:"originalText"`
	Parsed       json.RawMessage `json:"parsed,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Job is a stored job description.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	UserID     string          `json:"userId"`
	SourceURL  string          `json:"sourceUrl,omitempty"`
	RawText    string          `json:"rawText"`
	Structured json.RawMessage `json:"structured,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TailoringRun is a stored pipeline result. Result holds the full
// TailoringResult; Explanations holds the gap analysis, proposed bullet edits
// and skill ordering for display.
type TailoringRun struct {
	ID           uuid.UUID       `json:"id"`
	UserID       string          `json:"userId"`
	ResumeID     uuid.UUID       `json:"resumeId"`
	JobID        uuid.UUID       `json:"jobId"`
	Result       json.RawMessage `json:"result"`
	Explanations json.RawMessage `json:"explanations,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
