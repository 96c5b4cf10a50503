package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
	"speite/internal/app/model"
)

const engineName = "whisper_server"

// WhisperServerEngine implements inference via HTTP to a whisper.cpp server instance
type WhisperServerEngine struct {
	config WhisperServerConfig
	client *http.Client
	logger *zap.Logger
}

// WhisperServerConfig represents configuration for the whisper-server HTTP API
type WhisperServerConfig struct {
	BaseURL       string            // Base URL of whisper-server (e.g., "http://192.168.1.100:8080")
	InferencePath string            // Inference endpoint path (default: "/inference")
	LoadPath      string            // Model loading endpoint path (default: "/load")
	ModelPath     string            // Model file on the server host; empty keeps the server's model
	Timeout       time.Duration     // Request timeout
	Language      string            // Default language code
	Temperature   float64           // Decoding temperature (0.0-1.0)
	CustomHeaders map[string]string // Custom HTTP headers
}

// WhisperServerResponse represents the response from whisper-server
type WhisperServerResponse struct {
	Text                        string                 `json:"text,omitempty"`
	Task                        string                 `json:"task,omitempty"`
	Language                    string                 `json:"language,omitempty"`
	Duration                    float64                `json:"duration,omitempty"`
	Segments                    []WhisperServerSegment `json:"segments,omitempty"`
	DetectedLanguage            string                 `json:"detected_language,omitempty"`
	DetectedLanguageProbability float64                `json:"detected_language_probability,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Tokens       []int   `json:"tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// NewWhisperServerEngine creates a new whisper-server HTTP engine
func NewWhisperServerEngine(config WhisperServerConfig, logger *zap.Logger) *WhisperServerEngine {
	// Set defaults
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WhisperServerEngine{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Load switches the server to the configured model, or checks that it responds when none is set.
func (wse *WhisperServerEngine) Load(ctx context.Context) error {
	if wse.config.ModelPath != "" {
		return wse.loadModel(ctx, wse.config.ModelPath)
	}
	return wse.healthCheck(ctx)
}

func (wse *WhisperServerEngine) healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wse.config.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	wse.setHeaders(req)

	resp, err := wse.client.Do(req)
	if err != nil {
		return &provider.TranscriptionError{
			Code:      "server_unreachable",
			Message:   fmt.Sprintf("server connectivity test failed: %v", err),
			Provider:  engineName,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return provider.NewTranscriptionError(engineName, "server_error", true,
			"server returned error status: %d", resp.StatusCode)
	}

	wse.logger.Info("whisper-server is reachable", zap.String("url", wse.config.BaseURL))
	return nil
}

func (wse *WhisperServerEngine) loadModel(ctx context.Context, modelPath string) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", modelPath); err != nil {
		return fmt.Errorf("failed to write model field: %v", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wse.config.BaseURL+wse.config.LoadPath, body)
	if err != nil {
		return fmt.Errorf("failed to create load model request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	wse.setHeaders(req)

	resp, err := wse.client.Do(req)
	if err != nil {
		return &provider.TranscriptionError{
			Code:      "server_unreachable",
			Message:   fmt.Sprintf("load model request failed: %v", err),
			Provider:  engineName,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return provider.NewTranscriptionError(engineName, "load_failed", false,
			"load model failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	wse.logger.Info("whisper-server loaded model", zap.String("model", modelPath))
	return nil
}

// Transcribe posts the buffer as a WAV upload to the inference endpoint
func (wse *WhisperServerEngine) Transcribe(ctx context.Context, request *provider.Request) (*provider.Response, error) {
	startTime := time.Now()

	body, contentType, err := wse.createMultipartForm(request)
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "form_creation_failed", false,
			"failed to create multipart form: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wse.config.BaseURL+wse.config.InferencePath, body)
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "request_creation_failed", false,
			"failed to create HTTP request: %v", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	wse.setHeaders(httpReq)

	resp, err := wse.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, provider.NewTranscriptionError(engineName, "request_failed", true, "HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "response_read_failed", true, "failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewTranscriptionError(engineName, "api_error", resp.StatusCode >= 500,
			"API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData)))
	}

	response, err := parseResponse(responseData)
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "response_parse_failed", false,
			"failed to parse response: %v", err)
	}

	if response.Language == "" {
		response.Language = wse.language(request)
	}
	if response.Duration == 0 {
		response.Duration = request.Audio.Duration()
	}
	response.ProcessingTime = time.Since(startTime)
	response.ModelUsed = "whisper-server"

	wse.logger.Debug("whisper-server transcription finished",
		zap.Int("segments", len(response.Segments)),
		zap.Duration("elapsed", response.ProcessingTime))
	return response, nil
}

// createMultipartForm creates the multipart form for the API request
func (wse *WhisperServerEngine) createMultipartForm(request *provider.Request) (*bytes.Buffer, string, error) {
	wavFile, err := os.CreateTemp("", "whisper_server-*.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp file: %v", err)
	}
	wavPath := wavFile.Name()
	wavFile.Close()
	defer os.Remove(wavPath)

	if err := audio.SaveAudio(request.Audio, wavPath); err != nil {
		return nil, "", err
	}

	file, err := os.Open(wavPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %v", err)
	}

	params := map[string]string{
		"response_format": "verbose_json",
		"temperature":     fmt.Sprintf("%.2f", wse.config.Temperature),
		"translate":       strconv.FormatBool(request.IsTranslate()),
	}
	if language := wse.language(request); language != "" {
		params["language"] = language
	}
	if request.Prompt != "" {
		params["prompt"] = request.Prompt
	}

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %v", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType(), nil
}

func (wse *WhisperServerEngine) language(request *provider.Request) string {
	if request != nil && request.Language != "" {
		return request.Language
	}
	return wse.config.Language
}

func (wse *WhisperServerEngine) setHeaders(req *http.Request) {
	for key, value := range wse.config.CustomHeaders {
		req.Header.Set(key, value)
	}
}

// parseResponse accepts verbose_json, plain json and, from older servers, plain text.
func parseResponse(data []byte) (*provider.Response, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &provider.Response{Text: strings.TrimSpace(string(data))}, nil
	}

	var resp WhisperServerResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %v", err)
	}

	segments := make([]model.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, model.Segment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text})
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = model.JoinSegments(segments)
	}

	language := resp.DetectedLanguage
	if language == "" {
		language = resp.Language
	}

	return &provider.Response{
		Text:     text,
		Language: language,
		Segments: segments,
		Duration: resp.Duration,
	}, nil
}

// Info returns metadata about the whisper-server engine
func (wse *WhisperServerEngine) Info() provider.EngineInfo {
	return provider.EngineInfo{
		Name:               engineName,
		DisplayName:        "Whisper Server (HTTP API)",
		Type:               provider.EngineTypeRemote,
		Model:              wse.config.ModelPath,
		SupportsTimestamps: true,
		SupportsTranslate:  true,
	}
}

// Close releases idle connections
func (wse *WhisperServerEngine) Close() error {
	wse.client.CloseIdleConnections()
	return nil
}
