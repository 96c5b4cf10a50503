package services

import (
	"context"

	"go.uber.org/zap"

	"speite/internal/api/errors"
	"speite/internal/api/v1/dto"
	apperrors "speite/internal/app/errors"
	"speite/internal/app/keywords"
	"speite/internal/app/metrics"
	"speite/internal/app/model"
	"speite/internal/app/stt"
)

// transcriptionService implements TranscriptionService
type transcriptionService struct {
	stt          SpeechToText
	preprocessor AudioPreprocessor
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(speech SpeechToText, preprocessor AudioPreprocessor, m *metrics.Metrics, logger *zap.Logger) TranscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &transcriptionService{
		stt:          speech,
		preprocessor: preprocessor,
		metrics:      m,
		logger:       logger,
	}
}

// Transcribe preprocesses an upload and runs it through the model
func (s *transcriptionService) Transcribe(ctx context.Context, req *dto.TranscribeRequest, data []byte) (*dto.TranscriptionResponse, error) {
	filename := ""
	if req.File != nil {
		filename = req.File.Filename
	}

	buf, err := s.preprocessor.PreprocessBytes(ctx, data, filename)
	if err != nil {
		s.logger.Warn("Audio preprocessing failed", zap.String("filename", filename), zap.Error(err))
		if apperrors.IsValidationError(err) {
			s.metrics.RecordRejected()
		}
		return nil, errors.FromTranscriptionError(err)
	}

	transcribe := s.stt.Transcribe
	if req.IncludeTimestamps {
		transcribe = s.stt.TranscribeWithTimestamps
	}

	result, err := transcribe(ctx, buf, stt.WithTask(req.Task))
	if err != nil {
		s.logger.Error("Transcription failed", zap.String("filename", filename), zap.Error(err))
		return nil, errors.FromTranscriptionError(err)
	}

	resp := &dto.TranscriptionResponse{
		Text:     result.Text,
		Language: result.Language,
	}
	if req.IncludeTimestamps {
		resp.Segments = dto.ToSegmentResponses(result.Segments)
	}
	if wanted := keywords.Parse(req.Keywords); len(wanted) > 0 {
		resp.Keywords = keywords.Detect(result.Text, wanted)
	}

	s.logger.Info("Transcription completed",
		zap.String("filename", filename),
		zap.Float64("audio_seconds", buf.Duration()),
		zap.Int("characters", len(resp.Text)),
	)
	return resp, nil
}

// Health reports readiness based on whether the model is loaded
func (s *transcriptionService) Health() dto.HealthResponse {
	loaded := s.stt.IsLoaded()
	status := dto.HealthStatusNotReady
	if loaded {
		status = dto.HealthStatusHealthy
	}
	return dto.HealthResponse{
		Status:      status,
		ModelLoaded: loaded,
		ModelInfo:   s.stt.ModelInfo(),
	}
}

func (s *transcriptionService) ModelInfo() model.ModelInfo {
	return s.stt.ModelInfo()
}
