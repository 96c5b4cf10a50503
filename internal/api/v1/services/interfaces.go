package services

import (
	"context"

	"speite/internal/api/v1/dto"
	"speite/internal/app/audio"
	"speite/internal/app/model"
	"speite/internal/app/stt"
)

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	Transcribe(ctx context.Context, req *dto.TranscribeRequest, data []byte) (*dto.TranscriptionResponse, error)
	Health() dto.HealthResponse
	ModelInfo() model.ModelInfo
}

// SpeechToText is the subset of stt.Service used by the API
type SpeechToText interface {
	Transcribe(ctx context.Context, buf audio.Buffer, opts ...stt.Option) (*model.Result, error)
	TranscribeWithTimestamps(ctx context.Context, buf audio.Buffer, opts ...stt.Option) (*model.Result, error)
	IsLoaded() bool
	ModelInfo() model.ModelInfo
}

// AudioPreprocessor turns uploaded bytes into a model-ready buffer
type AudioPreprocessor interface {
	PreprocessBytes(ctx context.Context, data []byte, filename string) (audio.Buffer, error)
}
