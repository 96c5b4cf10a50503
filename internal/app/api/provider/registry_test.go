package provider

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speite/internal/app/errors"
	"speite/internal/config"
)

type stubEngine struct {
	name string
}

func (s *stubEngine) Load(context.Context) error { return nil }

func (s *stubEngine) Transcribe(context.Context, *Request) (*Response, error) {
	return &Response{Text: "stub"}, nil
}

func (s *stubEngine) Info() EngineInfo { return EngineInfo{Name: s.name, Type: EngineTypeLocal} }

func (s *stubEngine) Close() error { return nil }

func TestRegisterAndCreateEngine(t *testing.T) {
	RegisterEngine("stub_registry_test", func(settings *config.Settings, _ *zap.Logger) (Engine, error) {
		return &stubEngine{name: settings.Engine}, nil
	})

	settings := config.Default()
	settings.Engine = "stub_registry_test"

	engine, err := NewEngine(settings, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "stub_registry_test", engine.Info().Name)
	assert.Contains(t, ListEngines(), "stub_registry_test")
}

func TestNewEngineUnknown(t *testing.T) {
	settings := config.Default()
	settings.Engine = "does_not_exist"

	_, err := NewEngine(settings, zap.NewNop())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrEngineNotFound))
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestListEnginesSorted(t *testing.T) {
	creator := func(*config.Settings, *zap.Logger) (Engine, error) { return &stubEngine{}, nil }
	RegisterEngine("zz_sorted_test", creator)
	RegisterEngine("aa_sorted_test", creator)

	names := ListEngines()
	assert.IsIncreasing(t, names)
}

func TestModelFileName(t *testing.T) {
	tests := map[string]string{
		"tiny":   "ggml-tiny.bin",
		"base":   "ggml-base.bin",
		"medium": "ggml-medium.bin",
		"large":  "ggml-large-v3.bin",
	}
	for name, want := range tests {
		assert.Equal(t, want, ModelFileName(name))
	}
}

func TestTranscriptionError(t *testing.T) {
	err := NewTranscriptionError("whisper_cpp", "exec_failed", false, "exit status %d", 2)
	assert.Equal(t, "exit status 2", err.Error())
	assert.Equal(t, "whisper_cpp", err.Provider)
	assert.False(t, err.Retryable)

	req := &Request{Task: TaskTranslate}
	assert.True(t, req.IsTranslate())
}
