package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speite/internal/api/v1/dto"
	"speite/internal/app/metrics"
	"speite/internal/app/model"
)

type stubService struct{}

func (stubService) Transcribe(context.Context, *dto.TranscribeRequest, []byte) (*dto.TranscriptionResponse, error) {
	return &dto.TranscriptionResponse{Text: "ok", Language: "en"}, nil
}

func (stubService) Health() dto.HealthResponse {
	return dto.HealthResponse{Status: dto.HealthStatusNotReady}
}

func (stubService) ModelInfo() model.ModelInfo {
	return model.ModelInfo{ModelName: "tiny"}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(Config{
		Host:          "127.0.0.1",
		Port:          0,
		MaxUploadSize: 1 << 20,
		Version:       "test",
	}, stubService{}, metrics.NewMetrics(), zap.NewNop())
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path     string
		contains string
	}{
		{"/", `"status":"online"`},
		{"/health", `"status":"not_ready"`},
		{"/models", `"model_name":"tiny"`},
		{"/ui/", "<form"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `speite_http_requests_total{method="GET",path="/models",status="200"} 1`)
}

func TestMaxMultipartMemory(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, int64(1<<20), srv.Router().MaxMultipartMemory)
}

func TestStartShutdown(t *testing.T) {
	srv := newTestServer(t)

	errCh, err := srv.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	_, open := <-errCh
	assert.False(t, open)
}
