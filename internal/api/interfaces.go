// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"mime/multipart"

	"github.com/Polyte/OMS-OCR/internal/models"
	"github.com/Polyte/OMS-OCR/internal/validation"
	"github.com/labstack/echo/v4"
)

// UploadHandler handles document submissions
type UploadHandler interface {
	HandleUpload(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// StatsHandler exposes the processing log summary
type StatsHandler interface {
	HandleStats(c echo.Context) error
}

// Receiver admits an uploaded part into storage
type Receiver interface {
	Receive(fh *multipart.FileHeader) (*models.StoredFile, error)
}

// Processor runs the upload pipeline
type Processor interface {
	Process(ctx context.Context, form validation.Form, file *models.StoredFile) (*models.ProcessingResult, error)
}

// StatsSource summarizes past pipeline runs
type StatsSource interface {
	Stats(ctx context.Context) (*models.ProcessingStats, error)
}
