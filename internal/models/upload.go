package models

// UploadRequest carries the submitted form for a single upload.
// File is nil when the client sent no file part.
type UploadRequest struct {
	FirstName   string
	SurName     string
	DateOfBirth string
	File        *StoredFile
}

// ProcessingResult is returned to the client after a successful upload.
type ProcessingResult struct {
	FullName         string `json:"fullName" msgpack:"fullName"`
	Age              int    `json:"age" msgpack:"age"`
	RawExtractedText string `json:"rawExtractedText" msgpack:"rawExtractedText"`
}
