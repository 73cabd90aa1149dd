// Package upload admits multipart file parts into temporary storage.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/Polyte/OMS-OCR/internal/models"
)

const (
	// DefaultMaxMB is the default upload size cap in megabytes.
	DefaultMaxMB = 10

	MsgInvalidType = "Invalid file type. Only PDF, JPEG, and PNG files are allowed."
)

// DefaultAllowedTypes lists the MIME types accepted when none are configured.
var DefaultAllowedTypes = []string{"application/pdf", "image/jpeg", "image/jpg", "image/png"}

// Store defines the interface needed from storage layer.
type Store interface {
	Save(name, mimeType string, r io.Reader) (*models.StoredFile, error)
	Delete(id string) error
}

// Rejection reports a file refused before the pipeline runs. Nothing is
// left in storage when it is returned.
type Rejection struct {
	Details []string
}

func (r *Rejection) Error() string {
	return "upload rejected: " + strings.Join(r.Details, "; ")
}

// Receiver enforces the MIME allow-list and the size cap, then stores the
// accepted bytes.
type Receiver struct {
	store   Store
	maxMB   int
	allowed map[string]struct{}
	logger  *slog.Logger
}

// Option customizes a Receiver.
type Option func(*Receiver)

// WithMaxMB sets the size cap. Values below 1 are ignored.
func WithMaxMB(mb int) Option {
	return func(r *Receiver) {
		if mb > 0 {
			r.maxMB = mb
		}
	}
}

// WithAllowedTypes replaces the MIME allow-list. An empty list is ignored.
func WithAllowedTypes(types []string) Option {
	return func(r *Receiver) {
		if len(types) == 0 {
			return
		}
		r.allowed = make(map[string]struct{}, len(types))
		for _, t := range types {
			r.allowed[normalizeType(t)] = struct{}{}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReceiver creates a Receiver over store.
func NewReceiver(store Store, opts ...Option) *Receiver {
	r := &Receiver{
		store:  store,
		maxMB:  DefaultMaxMB,
		logger: slog.Default(),
	}
	WithAllowedTypes(DefaultAllowedTypes)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxBytes returns the size cap in bytes.
func (r *Receiver) MaxBytes() int64 {
	return int64(r.maxMB) << 20
}

// SizeMessage is the rejection detail for files over the cap.
func (r *Receiver) SizeMessage() string {
	return SizeMessage(r.maxMB)
}

// SizeMessage formats the over-cap rejection detail for a cap in megabytes.
func SizeMessage(maxMB int) string {
	return fmt.Sprintf("File size must be less than %dMB", maxMB)
}

// Receive validates and stores one uploaded part. A nil header means no file
// was sent and yields (nil, nil); presence is the validator's concern.
func (r *Receiver) Receive(fh *multipart.FileHeader) (*models.StoredFile, error) {
	if fh == nil {
		return nil, nil
	}

	mimeType := normalizeType(fh.Header.Get("Content-Type"))
	if _, ok := r.allowed[mimeType]; !ok {
		r.logger.Warn("upload rejected", "reason", "mime_type", "mime_type", mimeType, "file", fh.Filename)
		return nil, &Rejection{Details: []string{MsgInvalidType}}
	}

	max := r.MaxBytes()
	if fh.Size > max {
		r.logger.Warn("upload rejected", "reason", "size", "size", fh.Size, "file", fh.Filename)
		return nil, &Rejection{Details: []string{r.SizeMessage()}}
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	info, err := r.store.Save(fh.Filename, mimeType, io.LimitReader(src, max+1))
	if err != nil {
		return nil, fmt.Errorf("storing uploaded file: %w", err)
	}

	if info.Size > max {
		if err := r.store.Delete(info.ID); err != nil {
			r.logger.Error("failed to remove oversize upload", "id", info.ID, "error", err)
		}
		r.logger.Warn("upload rejected", "reason", "size", "size", info.Size, "file", fh.Filename)
		return nil, &Rejection{Details: []string{r.SizeMessage()}}
	}

	r.logger.Debug("upload stored", "id", info.ID, "mime_type", mimeType, "size", info.Size)
	return info, nil
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if parsed, _, err := mime.ParseMediaType(t); err == nil {
		return parsed
	}
	return t
}
