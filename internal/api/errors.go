// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Polyte/OMS-OCR/internal/extract"
	"github.com/Polyte/OMS-OCR/internal/pipeline"
	"github.com/Polyte/OMS-OCR/internal/upload"
	"github.com/labstack/echo/v4"
)

// Top-level error strings clients match on.
const (
	ErrValidationFailed = "Validation failed"
	ErrProcessingFailed = "Failed to process file"
	ErrRouteNotFound    = "Route not found"
	ErrServer           = "Server error"

	MsgMalformedForm = "Request must be a valid multipart/form-data body"
	MsgStorageFailed = "Failed to store uploaded file"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int      `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// NewValidationError creates a 400 error carrying every problem found
func NewValidationError(details []string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: ErrValidationFailed,
		Details: details,
	}
}

// NewProcessingError creates a 500 error for a failed pipeline step
func NewProcessingError(detail string) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: ErrProcessingFailed,
		Details: []string{detail},
	}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError() *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: ErrRouteNotFound,
	}
}

// NewInternalError creates a 500 error for anything unexpected
func NewInternalError(cause error) *APIError {
	detail := "Unknown error occurred"
	if cause != nil {
		detail = cause.Error()
	}
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: ErrServer,
		Details: []string{detail},
	}
}

// NewErrorHandler returns the echo error handler. sizeMessage is reported
// when the body limit middleware rejects a request.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(msg, logger)
func NewErrorHandler(sizeMessage string, logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err, sizeMessage)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", apiErr.Status,
				"error", err,
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(apiErr.Status)
		} else {
			werr = c.JSON(apiErr.Status, apiErr)
		}
		if werr != nil {
			logger.Error("failed to write error response", "error", werr)
		}
	}
}

func toAPIError(err error, sizeMessage string) *APIError {
	var (
		apiErr     *APIError
		rejection  *upload.Rejection
		invalid    *pipeline.ValidationError
		extraction *extract.ExtractionFailure
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &rejection):
		return NewValidationError(rejection.Details)
	case errors.As(err, &invalid):
		return NewValidationError(invalid.Details)
	case errors.As(err, &extraction):
		return NewProcessingError(extraction.Message)
	case errors.As(err, &httpErr):
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return NewNotFoundError()
		case http.StatusRequestEntityTooLarge:
			return NewValidationError([]string{sizeMessage})
		}
		if httpErr.Code >= http.StatusInternalServerError {
			return NewInternalError(httpErr)
		}
		return &APIError{Status: httpErr.Code, Message: http.StatusText(httpErr.Code)}
	default:
		return NewInternalError(err)
	}
}
