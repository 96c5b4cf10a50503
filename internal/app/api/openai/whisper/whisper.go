package whisper

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
	"speite/internal/app/model"
)

const engineName = "openai"

// Config represents configuration for an OpenAI-compatible transcription server
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Language    string
	Temperature float32
	Timeout     time.Duration
}

// RemoteTranscriber talks to any server implementing the OpenAI audio API
// (faster-whisper-server, LocalAI, whisper.cpp's OpenAI shim).
type RemoteTranscriber struct {
	client *openai.Client
	config Config
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(config Config, logger *zap.Logger) *RemoteTranscriber {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &RemoteTranscriber{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}
}

// Load lists the server's models to confirm it is reachable.
func (rt *RemoteTranscriber) Load(ctx context.Context) error {
	models, err := rt.client.ListModels(ctx)
	if err != nil {
		return rt.handleAPIError(err)
	}

	found := false
	for _, m := range models.Models {
		if m.ID == rt.config.Model {
			found = true
			break
		}
	}
	if !found {
		// Several local servers list nothing or only aliases; they still serve the model.
		rt.logger.Warn("model not listed by server", zap.String("model", rt.config.Model), zap.Int("listed", len(models.Models)))
	}

	rt.logger.Info("OpenAI-compatible server is reachable", zap.String("base_url", rt.config.BaseURL))
	return nil
}

// Transcribe uploads the buffer as WAV and requests a verbose_json transcription
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.Request) (*provider.Response, error) {
	startTime := time.Now()

	wavFile, err := os.CreateTemp("", "speite-openai-*.wav")
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "temp_file_error", false, "failed to create temp file: %v", err)
	}
	wavPath := wavFile.Name()
	wavFile.Close()
	defer os.Remove(wavPath)

	if err := audio.SaveAudio(request.Audio, wavPath); err != nil {
		return nil, provider.NewTranscriptionError(engineName, "audio_write_error", false, "failed to write audio: %v", err)
	}

	audioRequest := openai.AudioRequest{
		Model:       rt.getModel(request),
		FilePath:    wavPath,
		Prompt:      request.Prompt,
		Temperature: rt.config.Temperature,
		Language:    rt.getLanguage(request),
		Format:      openai.AudioResponseFormatVerboseJSON,
	}

	var resp openai.AudioResponse
	if request.IsTranslate() {
		// translations are always English; the endpoint rejects a language field
		audioRequest.Language = ""
		resp, err = rt.client.CreateTranslation(ctx, audioRequest)
	} else {
		resp, err = rt.client.CreateTranscription(ctx, audioRequest)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, rt.handleAPIError(err)
	}

	segments := make([]model.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, model.Segment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text})
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = model.JoinSegments(segments)
	}

	language := normalizeLanguage(resp.Language)
	if language == "" {
		language = rt.getLanguage(request)
	}

	duration := resp.Duration
	if duration == 0 {
		duration = request.Audio.Duration()
	}

	return &provider.Response{
		Text:           text,
		Language:       language,
		Segments:       segments,
		Duration:       duration,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      audioRequest.Model,
	}, nil
}

// getModel determines which model to use
func (rt *RemoteTranscriber) getModel(request *provider.Request) string {
	if request.Model != "" {
		return request.Model
	}
	return rt.config.Model
}

// getLanguage determines which language to use
func (rt *RemoteTranscriber) getLanguage(request *provider.Request) string {
	if request.Language != "" {
		return request.Language
	}
	return rt.config.Language
}

// normalizeLanguage maps the full language names some servers return to ISO codes.
func normalizeLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "english":
		return "en"
	default:
		return strings.ToLower(strings.TrimSpace(language))
	}
}

// handleAPIError converts OpenAI API errors to TranscriptionError
func (rt *RemoteTranscriber) handleAPIError(err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return &provider.TranscriptionError{
				Code:        "authentication_failed",
				Message:     "API key was rejected by the server",
				Provider:    engineName,
				Retryable:   false,
				Suggestions: []string{"Check SPEITE_OPENAI_API_KEY"},
			}
		case http.StatusNotFound:
			return &provider.TranscriptionError{
				Code:        "model_not_found",
				Message:     fmt.Sprintf("server does not serve model %q: %s", rt.config.Model, apiErr.Message),
				Provider:    engineName,
				Retryable:   false,
				Suggestions: []string{"Check SPEITE_OPENAI_MODEL"},
			}
		case http.StatusRequestEntityTooLarge:
			return provider.NewTranscriptionError(engineName, "file_too_large", false, "audio is too large for the server")
		case http.StatusBadRequest:
			return provider.NewTranscriptionError(engineName, "invalid_file", false, "server rejected the audio: %s", apiErr.Message)
		default:
			return provider.NewTranscriptionError(engineName, "api_error", apiErr.HTTPStatusCode >= 500,
				"API error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
	}

	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return provider.NewTranscriptionError(engineName, "api_error", reqErr.HTTPStatusCode >= 500,
			"request failed (status %d): %v", reqErr.HTTPStatusCode, reqErr.Err)
	}

	return provider.NewTranscriptionError(engineName, "request_failed", true, "transcription request failed: %v", err)
}

// Info returns metadata about the OpenAI-compatible engine
func (rt *RemoteTranscriber) Info() provider.EngineInfo {
	return provider.EngineInfo{
		Name:               engineName,
		DisplayName:        "OpenAI-compatible API",
		Type:               provider.EngineTypeRemote,
		Model:              rt.config.Model,
		SupportsTimestamps: true,
		SupportsTranslate:  true,
	}
}

// Close is a no-op; the client holds no resources beyond pooled connections.
func (rt *RemoteTranscriber) Close() error {
	return nil
}
