package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOCR struct {
	text     string
	err      error
	calls    int
	lastPath string
	lastLang string
}

func (f *fakeOCR) Recognize(ctx context.Context, path, language string) (string, error) {
	f.calls++
	f.lastPath = path
	f.lastLang = language
	return f.text, f.err
}

type fakePDF struct {
	text  string
	err   error
	calls int
}

func (f *fakePDF) ReadText(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestExtractor_ImageIsTrimmed(t *testing.T) {
	ocr := &fakeOCR{text: "  \n Hello from OCR \t\n"}
	pdf := &fakePDF{}
	x := NewExtractor(ocr, pdf)

	text, err := x.Extract(context.Background(), "/tmp/a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Hello from OCR", text)
	assert.Equal(t, 1, ocr.calls)
	assert.Equal(t, 0, pdf.calls)
	assert.Equal(t, "/tmp/a.png", ocr.lastPath)
	assert.Equal(t, "eng", ocr.lastLang)
}

func TestExtractor_PDFIsNotTrimmed(t *testing.T) {
	raw := "\n\nHello\n  "
	ocr := &fakeOCR{}
	pdf := &fakePDF{text: raw}
	x := NewExtractor(ocr, pdf)

	text, err := x.Extract(context.Background(), "/tmp/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, raw, text)
	assert.Equal(t, 0, ocr.calls)
	assert.Equal(t, 1, pdf.calls)
}

func TestExtractor_Unsupported(t *testing.T) {
	ocr := &fakeOCR{}
	pdf := &fakePDF{}
	x := NewExtractor(ocr, pdf)

	_, err := x.Extract(context.Background(), "/tmp/a.txt", "text/plain")
	require.Error(t, err)

	var failure *ExtractionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindUnsupported, failure.Kind)
	assert.Equal(t, MsgUnsupported, failure.Message)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, 0, ocr.calls+pdf.calls)
}

func TestExtractor_BackendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("tesseract exploded")

	tests := []struct {
		name    string
		mime    string
		ocrErr  error
		pdfErr  error
		wantMsg string
		kind    Kind
	}{
		{"image backend", "image/jpeg", boom, nil, MsgImageFailed, KindImage},
		{"pdf backend", "application/pdf", nil, boom, MsgPDFFailed, KindPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewExtractor(&fakeOCR{text: "partial", err: tt.ocrErr}, &fakePDF{text: "partial", err: tt.pdfErr})

			text, err := x.Extract(context.Background(), "/tmp/file", tt.mime)
			assert.Empty(t, text)

			var failure *ExtractionFailure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, tt.kind, failure.Kind)
			assert.Equal(t, tt.wantMsg, failure.Message)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), "tesseract exploded")
		})
	}
}

func TestExtractor_WithLanguage(t *testing.T) {
	ocr := &fakeOCR{text: "x"}
	x := NewExtractor(ocr, nil, WithLanguage("deu"), WithLanguage(""))

	_, err := x.Extract(context.Background(), "/tmp/a.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "deu", ocr.lastLang)
}

func TestExtractor_MissingBackend(t *testing.T) {
	x := NewExtractor(nil, nil)

	_, err := x.Extract(context.Background(), "/tmp/a.pdf", "application/pdf")
	var failure *ExtractionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, MsgPDFFailed, failure.Message)
}
