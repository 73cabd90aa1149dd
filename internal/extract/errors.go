package extract

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is the cause when no backend handles the MIME type.
var ErrUnsupportedType = errors.New("unsupported file type")

// User-facing diagnostics, one per kind.
const (
	MsgImageFailed = "Failed to extract text from image"
	MsgPDFFailed   = "Failed to extract text from PDF"
	MsgUnsupported = "Unsupported file type"
)

// ExtractionFailure wraps any backend error. Message is safe to show to
// clients; Cause keeps the backend detail for logs.
type ExtractionFailure struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ExtractionFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractionFailure) Unwrap() error {
	return e.Cause
}

func newFailure(kind Kind, cause error) *ExtractionFailure {
	msg := MsgUnsupported
	switch kind {
	case KindImage:
		msg = MsgImageFailed
	case KindPDF:
		msg = MsgPDFFailed
	}
	return &ExtractionFailure{Kind: kind, Message: msg, Cause: cause}
}
