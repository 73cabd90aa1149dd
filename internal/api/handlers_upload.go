// handlers_upload.go - Document upload handler
package api

import (
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Polyte/OMS-OCR/internal/upload"
	"github.com/Polyte/OMS-OCR/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the negotiated binary response type.
const MIMEApplicationMsgpack = "application/msgpack"

// Parts beyond this size spill to temp files during multipart parsing.
const multipartMemory = 32 << 20

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	receiver Receiver
	pipeline Processor
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(receiver Receiver, pipeline Processor, logger *slog.Logger) UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandlerImpl{
		receiver: receiver,
		pipeline: pipeline,
		logger:   logger,
	}
}

// HandleUpload accepts the multipart form (firstName, surName, dateOfBirth,
// file), runs the pipeline and returns the processing result.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	req := c.Request()
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		return multipartError(err)
	}
	defer req.MultipartForm.RemoveAll()

	form := validation.Form{
		FirstName:   c.FormValue("firstName"),
		SurName:     c.FormValue("surName"),
		DateOfBirth: c.FormValue("dateOfBirth"),
	}

	stored, err := h.receiver.Receive(firstFile(req.MultipartForm, "file"))
	if err != nil {
		var rejection *upload.Rejection
		if errors.As(err, &rejection) {
			return rejection
		}
		h.logger.Error("failed to store upload", "error", err)
		return NewProcessingError(MsgStorageFailed)
	}

	result, err := h.pipeline.Process(req.Context(), form, stored)
	if err != nil {
		return err
	}

	if wantsMsgpack(req.Header.Get(echo.HeaderAccept)) {
		data, err := msgpack.Marshal(result)
		if err != nil {
			return NewInternalError(err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
	}
	return c.JSON(http.StatusOK, result)
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

// multipartError keeps body-limit errors intact so they map to the size
// message; anything else is a malformed request.
func multipartError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return NewValidationError([]string{MsgMalformedForm})
}

// wantsMsgpack reports whether the Accept header ranks msgpack above JSON.
func wantsMsgpack(accept string) bool {
	if accept == "" {
		return false
	}

	var packQ, jsonQ float64 = -1, -1
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		switch mediaType {
		case MIMEApplicationMsgpack, "application/x-msgpack":
			packQ = max(packQ, q)
		case echo.MIMEApplicationJSON, "*/*", "application/*":
			jsonQ = max(jsonQ, q)
		}
	}
	return packQ > 0 && packQ > jsonQ
}
