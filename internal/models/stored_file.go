package models

import "time"

// StoredFile represents an upload written to the temp uploads directory.
type StoredFile struct {
	ID           string    `json:"id"`
	Path         string    `json:"-"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	StoredAt     time.Time `json:"storedAt"`
}
