// Package extract turns a stored document into plain text.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultLanguage is the Tesseract language used for image OCR.
const DefaultLanguage = "eng"

// ImageRecognizer runs OCR over an image file.
type ImageRecognizer interface {
	Recognize(ctx context.Context, path, language string) (string, error)
}

// PDFTextReader reads the text layer of a PDF file.
type PDFTextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// Extractor dispatches a file to the OCR or PDF backend by declared MIME type.
type Extractor struct {
	ocr      ImageRecognizer
	pdf      PDFTextReader
	language string
	logger   *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithLanguage overrides the OCR language.
func WithLanguage(lang string) Option {
	return func(e *Extractor) {
		if lang != "" {
			e.language = lang
		}
	}
}

// WithLogger sets the logger used for backend diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor builds an Extractor over the given backends.
func NewExtractor(ocr ImageRecognizer, pdf PDFTextReader, opts ...Option) *Extractor {
	e := &Extractor{
		ocr:      ocr,
		pdf:      pdf,
		language: DefaultLanguage,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the text of the file at path. Image text is trimmed,
// PDF text is returned exactly as the backend produced it. Any failure is
// an *ExtractionFailure and no partial text is returned.
func (e *Extractor) Extract(ctx context.Context, path, mimeType string) (string, error) {
	kind := KindOf(mimeType)
	start := time.Now()

	var (
		text string
		err  error
	)
	switch kind {
	case KindImage:
		if e.ocr == nil {
			return "", newFailure(kind, fmt.Errorf("no ocr backend configured"))
		}
		text, err = e.ocr.Recognize(ctx, path, e.language)
		text = strings.TrimSpace(text)
	case KindPDF:
		if e.pdf == nil {
			return "", newFailure(kind, fmt.Errorf("no pdf backend configured"))
		}
		text, err = e.pdf.ReadText(ctx, path)
	default:
		e.logger.Error("unsupported mime type", "mime_type", mimeType)
		return "", newFailure(kind, fmt.Errorf("%w: %q", ErrUnsupportedType, mimeType))
	}

	if err != nil {
		e.logger.Error("text extraction failed",
			"kind", kind.String(),
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", newFailure(kind, err)
	}

	e.logger.Debug("text extracted",
		"kind", kind.String(),
		"path", path,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
