package provider

import (
	"fmt"
	"time"

	"speite/internal/app/audio"
	"speite/internal/app/model"
)

// EngineType tells whether inference happens in this process's host or behind the network
type EngineType string

const (
	EngineTypeLocal  EngineType = "local"
	EngineTypeRemote EngineType = "remote"
)

// Task selects between transcription and translation into English
const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"
)

// Request is one inference call
type Request struct {
	Audio    audio.Buffer
	Language string
	Task     string
	Model    string
	Prompt   string
}

// IsTranslate reports whether the request asks for English translation.
func (r *Request) IsTranslate() bool {
	return r.Task == TaskTranslate
}

// Response is the raw engine output before the service shapes it
type Response struct {
	Text     string          `json:"text"`
	Language string          `json:"language,omitempty"`
	Segments []model.Segment `json:"segments,omitempty"`
	Duration float64         `json:"duration,omitempty"`

	ProcessingTime time.Duration `json:"processing_time,omitempty"`
	ModelUsed      string        `json:"model_used,omitempty"`
}

// EngineInfo contains metadata about an engine
type EngineInfo struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Type        EngineType `json:"type"`
	Model       string     `json:"model"`

	SupportsTimestamps bool `json:"supports_timestamps"`
	SupportsTranslate  bool `json:"supports_translate"`
	RequiresBinary     bool `json:"requires_binary"`
}

// TranscriptionError represents engine-specific errors
type TranscriptionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

// NewTranscriptionError builds a TranscriptionError with a formatted message.
func NewTranscriptionError(engine, code string, retryable bool, format string, args ...interface{}) *TranscriptionError {
	return &TranscriptionError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Provider:  engine,
		Retryable: retryable,
	}
}

// ModelFileName maps a Whisper size to its ggml weights file.
func ModelFileName(name string) string {
	if name == "large" {
		return "ggml-large-v3.bin"
	}
	return fmt.Sprintf("ggml-%s.bin", name)
}
