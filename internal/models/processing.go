package models

import "time"

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeExtractionFailed Outcome = "extraction_failed"
)

// ProcessingRecord is an anonymous row in the processing log.
// It never carries names, dates of birth or extracted text.
type ProcessingRecord struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"receivedAt"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	Outcome    Outcome   `json:"outcome"`
	StatusCode int       `json:"statusCode"`
	DurationMs int64     `json:"durationMs"`
}

// ProcessingStats summarizes the processing log.
type ProcessingStats struct {
	Total             int             `json:"total"`
	ByOutcome         map[Outcome]int `json:"byOutcome"`
	AverageDurationMs float64         `json:"averageDurationMs"`
}
