package provider

import (
	"context"
)

// Engine adapts one external inference back end that hosts the Whisper model.
//
// Implementations are not required to be safe for concurrent Transcribe calls;
// the STT service serializes access to its single engine.
type Engine interface {
	// Load prepares the model handle. Callers guarantee it runs once per process.
	Load(ctx context.Context) error

	// Transcribe runs inference on a preprocessed mono buffer.
	Transcribe(ctx context.Context, request *Request) (*Response, error)

	// Info returns engine metadata.
	Info() EngineInfo

	// Close releases resources held by the engine.
	Close() error
}
