package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTranscription(t *testing.T) {
	m := NewMetrics()

	m.RecordTranscription(StatusSuccess, 2*time.Second, 12.5)
	m.RecordTranscription(StatusError, time.Second, 30)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranscriptionsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranscriptionsTotal.WithLabelValues(StatusError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.TranscriptionDuration))
}

func TestRecordRejected(t *testing.T) {
	m := NewMetrics()
	m.RecordRejected()
	m.RecordRejected()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TranscriptionsTotal.WithLabelValues(StatusValidationError)))
	assert.Equal(t, 0, testutil.CollectAndCount(m.TranscriptionDuration))
}

func TestSetModelLoaded(t *testing.T) {
	m := NewMetrics()

	m.SetModelLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelLoaded))
	m.SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ModelLoaded))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest(http.MethodPost, "/transcribe", http.StatusOK, 150*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/transcribe", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTranscription(StatusSuccess, time.Second, 1)
		m.RecordRejected()
		m.SetModelLoaded(true)
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestHandlerExposesServiceMetrics(t *testing.T) {
	m := NewMetrics()
	m.SetModelLoaded(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "speite_model_loaded 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRegistriesAreIndependent(t *testing.T) {
	// two instances must not collide on registration
	a, b := NewMetrics(), NewMetrics()
	a.SetModelLoaded(true)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ModelLoaded))
}
