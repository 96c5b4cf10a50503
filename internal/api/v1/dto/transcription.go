package dto

import (
	"mime/multipart"

	"speite/internal/app/model"
)

// TranscribeRequest is the multipart form of POST /transcribe
type TranscribeRequest struct {
	File              *multipart.FileHeader `form:"file" binding:"required"`
	IncludeTimestamps bool                  `form:"include_timestamps"`
	Task              string                `form:"task" binding:"omitempty,oneof=transcribe translate"`
	// Keywords may be repeated or comma-separated
	Keywords []string `form:"keywords"`
}

// TranscriptionResponse is the body returned by POST /transcribe.
// Segments is null unless timestamps were requested.
type TranscriptionResponse struct {
	Text     string            `json:"text"`
	Language string            `json:"language"`
	Segments []SegmentResponse `json:"segments"`
	Keywords []string          `json:"keywords,omitempty"`
}

// SegmentResponse represents a transcription segment
type SegmentResponse struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// RootResponse describes the service at GET /
type RootResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status      string          `json:"status"`
	ModelLoaded bool            `json:"model_loaded"`
	ModelInfo   model.ModelInfo `json:"model_info"`
}

const (
	HealthStatusHealthy  = "healthy"
	HealthStatusNotReady = "not_ready"
)

// ToSegmentResponses converts model segments, returning an empty (not nil)
// slice so the field serializes as [] when timestamps were requested.
func ToSegmentResponses(segments []model.Segment) []SegmentResponse {
	out := make([]SegmentResponse, 0, len(segments))
	for _, s := range segments {
		out = append(out, SegmentResponse{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out
}
