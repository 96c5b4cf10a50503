package whisper

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
)

const verboseResponse = `{
  "task": "transcribe",
  "language": "english",
  "duration": 3.0,
  "text": " Hello world.",
  "segments": [
    {"id": 0, "seek": 0, "start": 0.0, "end": 1.5, "text": " Hello"},
    {"id": 1, "seek": 0, "start": 1.5, "end": 3.0, "text": " world."}
  ]
}`

type capturedRequest struct {
	mu       sync.Mutex
	path     string
	auth     string
	fields   map[string]string
	filename string
}

// newMockOpenAIServer serves the audio and models endpoints of the OpenAI API under /v1
func newMockOpenAIServer(t *testing.T, captured *capturedRequest, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"object":"list","data":[{"id":"whisper-1","object":"model"}]}`))
			return
		case "/v1/audio/transcriptions", "/v1/audio/translations":
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart/form-data, got %s", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		captured.mu.Lock()
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			captured.fields[k] = v[0]
		}
		if _, header, err := r.FormFile("file"); err == nil {
			captured.filename = header.Filename
		}
		captured.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestTranscriber(server *httptest.Server) *RemoteTranscriber {
	return NewRemoteTranscriber(Config{
		APIKey:   "test-api-key",
		BaseURL:  server.URL + "/v1",
		Language: "en",
	}, zap.NewNop())
}

func testRequest() *provider.Request {
	return &provider.Request{Audio: audio.Buffer{Samples: make([]float32, 48000), SampleRate: 16000}}
}

func TestRemoteTranscriber_Transcribe(t *testing.T) {
	captured := &capturedRequest{}
	server := newMockOpenAIServer(t, captured, http.StatusOK, verboseResponse)
	rt := newTestTranscriber(server)

	req := testRequest()
	req.Prompt = "greetings"
	resp, err := rt.Transcribe(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Hello world.", resp.Text)
	assert.Equal(t, "en", resp.Language)
	assert.InDelta(t, 3.0, resp.Duration, 1e-9)
	assert.Equal(t, "whisper-1", resp.ModelUsed)
	require.Len(t, resp.Segments, 2)
	assert.Equal(t, 1.5, resp.Segments[0].End)
	assert.Equal(t, " world.", resp.Segments[1].Text)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	assert.Equal(t, "/v1/audio/transcriptions", captured.path)
	assert.Equal(t, "Bearer test-api-key", captured.auth)
	assert.Equal(t, "whisper-1", captured.fields["model"])
	assert.Equal(t, "verbose_json", captured.fields["response_format"])
	assert.Equal(t, "en", captured.fields["language"])
	assert.Equal(t, "greetings", captured.fields["prompt"])
	assert.True(t, strings.HasSuffix(captured.filename, ".wav"))
}

func TestRemoteTranscriber_Translate(t *testing.T) {
	captured := &capturedRequest{}
	server := newMockOpenAIServer(t, captured, http.StatusOK, verboseResponse)
	rt := newTestTranscriber(server)

	req := testRequest()
	req.Task = provider.TaskTranslate
	_, err := rt.Transcribe(context.Background(), req)
	require.NoError(t, err)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	assert.Equal(t, "/v1/audio/translations", captured.path)
	assert.NotContains(t, captured.fields, "language")
}

func TestRemoteTranscriber_SegmentsWithoutText(t *testing.T) {
	server := newMockOpenAIServer(t, &capturedRequest{}, http.StatusOK,
		`{"text":"","segments":[{"id":0,"start":0,"end":1,"text":" one "},{"id":1,"start":1,"end":2,"text":"two"}]}`)
	rt := newTestTranscriber(server)

	resp, err := rt.Transcribe(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "one two", resp.Text)
	assert.Equal(t, "en", resp.Language)
	assert.InDelta(t, 3.0, resp.Duration, 1e-9)
}

func TestRemoteTranscriber_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      string
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, "authentication_failed", false},
		{"bad request", http.StatusBadRequest, "invalid_file", false},
		{"unknown model", http.StatusNotFound, "model_not_found", false},
		{"server error", http.StatusInternalServerError, "api_error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMockOpenAIServer(t, &capturedRequest{}, tt.status,
				`{"error": {"message": "nope", "type": "invalid_request_error"}}`)
			rt := newTestTranscriber(server)

			_, err := rt.Transcribe(context.Background(), testRequest())
			var terr *provider.TranscriptionError
			require.True(t, stderrors.As(err, &terr), "got %v", err)
			assert.Equal(t, tt.code, terr.Code)
			assert.Equal(t, tt.retryable, terr.Retryable)
			assert.Equal(t, "openai", terr.Provider)
		})
	}
}

func TestRemoteTranscriber_Load(t *testing.T) {
	server := newMockOpenAIServer(t, &capturedRequest{}, http.StatusOK, verboseResponse)

	assert.NoError(t, newTestTranscriber(server).Load(context.Background()))

	other := NewRemoteTranscriber(Config{BaseURL: server.URL + "/v1", Model: "Systran/faster-whisper-base"}, nil)
	assert.NoError(t, other.Load(context.Background()), "unlisted models only warn")
}

func TestRemoteTranscriber_LoadUnreachable(t *testing.T) {
	rt := NewRemoteTranscriber(Config{BaseURL: "http://127.0.0.1:1/v1"}, nil)

	err := rt.Load(context.Background())
	var terr *provider.TranscriptionError
	require.True(t, stderrors.As(err, &terr))
	assert.Equal(t, "request_failed", terr.Code)
	assert.True(t, terr.Retryable)
}

func TestRemoteTranscriber_Cancelled(t *testing.T) {
	server := newMockOpenAIServer(t, &capturedRequest{}, http.StatusOK, verboseResponse)
	rt := newTestTranscriber(server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rt.Transcribe(ctx, testRequest())
	assert.True(t, stderrors.Is(err, context.Canceled))
}

func TestInfo(t *testing.T) {
	rt := NewRemoteTranscriber(Config{}, nil)
	info := rt.Info()
	assert.Equal(t, "openai", info.Name)
	assert.Equal(t, "whisper-1", info.Model)
	assert.Equal(t, provider.EngineTypeRemote, info.Type)
	assert.NoError(t, rt.Close())
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", normalizeLanguage("English"))
	assert.Equal(t, "de", normalizeLanguage(" DE "))
	assert.Equal(t, "", normalizeLanguage(""))
}
