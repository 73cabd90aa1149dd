package extract

import (
	"mime"
	"strings"
)

// Kind is the extraction strategy resolved from a declared MIME type.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	default:
		return "unsupported"
	}
}

// KindOf maps a declared MIME type to a Kind. Parameters are ignored and
// the comparison is case-insensitive.
func KindOf(mimeType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case mt == "application/pdf":
		return KindPDF
	default:
		return KindUnsupported
	}
}
