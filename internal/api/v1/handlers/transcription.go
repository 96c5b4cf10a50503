package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"speite/internal/api/errors"
	"speite/internal/api/middleware"
	"speite/internal/api/v1/dto"
	"speite/internal/api/v1/services"
)

// multipartOverhead is the slack allowed on top of the file limit for the
// other form fields and part headers.
const multipartOverhead = 1 << 20

// TranscriptionHandler handles POST /transcribe
type TranscriptionHandler struct {
	service       services.TranscriptionService
	maxUploadSize int64
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService, maxUploadSize int64) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
	}
}

// Transcribe handles POST /transcribe
// Accepts a multipart upload and returns the transcription
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	if h.maxUploadSize > 0 {
		if c.Request.ContentLength > h.maxUploadSize+multipartOverhead {
			middleware.HandleError(c, errors.NewPayloadTooLargeError(h.maxUploadSize))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
	}

	var req dto.TranscribeRequest
	if err := middleware.ValidateForm(c, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			err = errors.NewPayloadTooLargeError(h.maxUploadSize)
		} else if req.File == nil {
			err = errors.NewBadRequestError("No file uploaded")
		}
		middleware.HandleError(c, err)
		return
	}

	if h.maxUploadSize > 0 && req.File.Size > h.maxUploadSize {
		middleware.HandleError(c, errors.NewPayloadTooLargeError(h.maxUploadSize))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Failed to read uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Failed to read uploaded file"))
		return
	}

	response, err := h.service.Transcribe(c.Request.Context(), &req, data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
