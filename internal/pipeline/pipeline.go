// Package pipeline runs one upload through validation, extraction and age
// calculation, and always releases the stored file.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Polyte/OMS-OCR/internal/age"
	"github.com/Polyte/OMS-OCR/internal/extract"
	"github.com/Polyte/OMS-OCR/internal/models"
	"github.com/Polyte/OMS-OCR/internal/validation"
	"github.com/google/uuid"
)

// TextExtractor turns a stored file into text.
type TextExtractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, error)
}

// FileRemover deletes stored files.
type FileRemover interface {
	Delete(id string) error
}

// Recorder receives one anonymous record per run.
type Recorder interface {
	Record(ctx context.Context, rec models.ProcessingRecord) error
}

// ValidationError carries every validator message, in order.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// Pipeline orchestrates a single upload.
type Pipeline struct {
	files     FileRemover
	extractor TextExtractor
	recorder  Recorder
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for future-date checks and age.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRecorder enables the processing log.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline.
func New(files FileRemover, extractor TextExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		files:     files,
		extractor: extractor,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates form and file, extracts the document text and computes
// the age. file may be nil. Whatever the outcome, a non-nil file is deleted
// exactly once before Process returns. Errors are *ValidationError or the
// extractor's error (normally *extract.ExtractionFailure).
func (p *Pipeline) Process(ctx context.Context, form validation.Form, file *models.StoredFile) (result *models.ProcessingResult, err error) {
	start := time.Now()
	now := p.now()

	if file != nil {
		defer p.release(file)
	}
	defer func() { p.record(ctx, file, now, start, err) }()

	res := validation.Validate(form, file, now)
	if !res.IsValid {
		p.logger.Info("upload validation failed", "errors", res.Errors)
		return nil, &ValidationError{Details: res.Errors}
	}
	data := res.Data

	p.logger.Info("processing file",
		"original_name", data.File.OriginalName,
		"mime_type", data.File.MimeType,
		"size", data.File.Size,
	)

	text, err := p.extractor.Extract(ctx, data.File.Path, data.File.MimeType)
	if err != nil {
		return nil, err
	}

	birth, err := validation.ParseDate(data.DateOfBirth, now.Location())
	if err != nil {
		// Unreachable after a successful Validate.
		return nil, &ValidationError{Details: []string{validation.MsgDOBInvalid}}
	}

	result = &models.ProcessingResult{
		FullName:         data.FirstName + " " + data.SurName,
		Age:              age.Years(birth, now),
		RawExtractedText: text,
	}

	p.logger.Info("file processed",
		"mime_type", data.File.MimeType,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// release deletes the stored file. Failures are logged only.
func (p *Pipeline) release(file *models.StoredFile) {
	if p.files == nil {
		return
	}
	if err := p.files.Delete(file.ID); err != nil {
		p.logger.Error("failed to delete stored file", "id", file.ID, "error", err)
	}
}

func (p *Pipeline) record(ctx context.Context, file *models.StoredFile, receivedAt, start time.Time, err error) {
	if p.recorder == nil {
		return
	}

	rec := models.ProcessingRecord{
		ID:         uuid.New().String(),
		ReceivedAt: receivedAt,
		Outcome:    models.OutcomeSuccess,
		StatusCode: http.StatusOK,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if file != nil {
		rec.MimeType = file.MimeType
		rec.Size = file.Size
	}

	var verr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		rec.Outcome = models.OutcomeValidationFailed
		rec.StatusCode = http.StatusBadRequest
	default:
		rec.Outcome = models.OutcomeExtractionFailed
		rec.StatusCode = http.StatusInternalServerError
	}

	// Record even if the client has gone away.
	if rerr := p.recorder.Record(context.WithoutCancel(ctx), rec); rerr != nil {
		p.logger.Error("failed to record processing outcome", "error", rerr)
	}
}

var _ TextExtractor = (*extract.Extractor)(nil)
