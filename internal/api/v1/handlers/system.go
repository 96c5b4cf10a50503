package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"speite/internal/api/v1/dto"
	"speite/internal/api/v1/services"
)

// SystemHandler serves the informational endpoints
type SystemHandler struct {
	service services.TranscriptionService
	version string
}

func NewSystemHandler(service services.TranscriptionService, version string) *SystemHandler {
	return &SystemHandler{service: service, version: version}
}

// Root handles GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RootResponse{
		Name:        "Speite",
		Version:     h.version,
		Status:      "online",
		Description: "Offline speech-to-text service powered by Whisper",
	})
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health())
}

// Models handles GET /models
func (h *SystemHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ModelInfo())
}
