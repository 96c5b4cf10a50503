package routes

import (
	"github.com/gin-gonic/gin"

	"speite/internal/api/v1/handlers"
	"speite/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	MaxUploadSize        int64
	Version              string
}

// RegisterRoutes registers the service endpoints on router
func RegisterRoutes(router gin.IRouter, container *ServiceContainer) {
	systemHandler := handlers.NewSystemHandler(container.TranscriptionService, container.Version)
	router.GET("/", systemHandler.Root)
	router.GET("/health", systemHandler.Health)
	router.GET("/models", systemHandler.Models)

	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService, container.MaxUploadSize)
	router.POST("/transcribe", transcriptionHandler.Transcribe)
}
