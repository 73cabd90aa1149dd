// Package pdftext reads the embedded text layer of PDF files.
package pdftext

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Reader implements extract.PDFTextReader with ledongthuc/pdf. Scanned PDFs
// without a text layer yield an empty string, not an error.
type Reader struct{}

// NewReader returns a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadText returns all plain text in the PDF at path, pages concatenated in
// order. The text is not trimmed.
func (r *Reader) ReadText(ctx context.Context, path string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	// The library panics on some malformed streams.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("parse pdf %s: %v", path, p)
		}
	}()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read text buffer: %w", err)
	}
	return buf.String(), nil
}
