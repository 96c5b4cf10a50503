package stt

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
	apperrors "speite/internal/app/errors"
	"speite/internal/app/metrics"
	"speite/internal/app/model"
	"speite/internal/app/testutil"
)

func testAudio() audio.Buffer {
	return testutil.SilentBuffer(2)
}

func defaultConfig() ServiceConfig {
	return ServiceConfig{ModelName: "base", Device: "cpu", Language: "en"}
}

func TestNewForcesCPUAndEnglish(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := New(&testutil.MockEngine{}, ServiceConfig{ModelName: "small", Device: "cuda", Language: "fr"}, nil, zap.New(core))

	info := svc.ModelInfo()
	assert.Equal(t, "cpu", info.Device)
	assert.Equal(t, "en", info.Language)
	assert.Equal(t, "small", info.ModelName)
	assert.Equal(t, "mock", info.Engine)
	assert.False(t, info.Loaded)
	assert.Equal(t, 2, logs.Len())
}

func TestNewNoWarningForDefaults(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	New(&testutil.MockEngine{}, defaultConfig(), nil, zap.New(core))
	assert.Equal(t, 0, logs.Len())
}

func TestLoadModelIsIdempotent(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil).Once()
	m := metrics.NewMetrics()
	svc := New(engine, defaultConfig(), m, nil)

	require.NoError(t, svc.LoadModel(context.Background()))
	require.NoError(t, svc.LoadModel(context.Background()))

	assert.True(t, svc.IsLoaded())
	assert.True(t, svc.ModelInfo().Loaded)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.ModelLoaded))
	engine.AssertNumberOfCalls(t, "Load", 1)
}

func TestLoadModelConcurrentCallersWait(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).After(50 * time.Millisecond).Return(nil).Once()
	svc := New(engine, defaultConfig(), nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.LoadModel(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	engine.AssertNumberOfCalls(t, "Load", 1)
}

func TestLoadModelFailureLeavesUnloaded(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(stderrors.New("weights missing")).Once()
	engine.On("Load", mock.Anything).Return(nil).Once()
	svc := New(engine, defaultConfig(), nil, nil)

	err := svc.LoadModel(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrModelLoad))
	assert.Contains(t, err.Error(), "weights missing")
	assert.False(t, svc.IsLoaded())

	require.NoError(t, svc.LoadModel(context.Background()))
	assert.True(t, svc.IsLoaded())
}

func TestTranscribeLoadsLazily(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil).Once()
	engine.On("Transcribe", mock.Anything, mock.MatchedBy(func(r *provider.Request) bool {
		return r.Task == provider.TaskTranscribe && r.Language == "en"
	})).Return(&provider.Response{
		Text:     "  hello world \n",
		Segments: []model.Segment{{ID: 0, Start: 0, End: 2, Text: " hello world "}},
	}, nil)

	m := metrics.NewMetrics()
	svc := New(engine, defaultConfig(), m, nil)

	result, err := svc.Transcribe(context.Background(), testAudio())
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, 2.0, result.Duration)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, " hello world ", result.Segments[0].Text)
	assert.True(t, svc.IsLoaded())
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.TranscriptionsTotal.WithLabelValues(metrics.StatusSuccess)))
	engine.AssertExpectations(t)
}

func TestTranscribeOptions(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil)
	engine.On("Transcribe", mock.Anything, mock.MatchedBy(func(r *provider.Request) bool {
		return r.Task == provider.TaskTranslate && r.Prompt == "names"
	})).Return(&provider.Response{Text: "ok", Language: "en"}, nil)
	svc := New(engine, defaultConfig(), nil, nil)

	_, err := svc.Transcribe(context.Background(), testAudio(), WithTask("translate"), WithPrompt("names"))
	require.NoError(t, err)
	engine.AssertExpectations(t)
}

func TestTranscribeRejectsUnknownTask(t *testing.T) {
	svc := New(&testutil.MockEngine{}, defaultConfig(), nil, nil)

	_, err := svc.Transcribe(context.Background(), testAudio(), WithTask("summarize"))
	assert.True(t, stderrors.Is(err, apperrors.ErrTranscription))
	assert.False(t, svc.IsLoaded())
}

func TestTranscribeEngineError(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil)
	engine.On("Transcribe", mock.Anything, mock.Anything).Return(nil, stderrors.New("decoder crashed"))
	m := metrics.NewMetrics()
	svc := New(engine, defaultConfig(), m, nil)

	_, err := svc.Transcribe(context.Background(), testAudio())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrTranscription))
	assert.Equal(t, "Transcription error: decoder crashed", err.Error())
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.TranscriptionsTotal.WithLabelValues(metrics.StatusError)))
}

func TestTranscribeLoadError(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(stderrors.New("no binary"))
	svc := New(engine, defaultConfig(), nil, nil)

	_, err := svc.Transcribe(context.Background(), testAudio())
	assert.True(t, stderrors.Is(err, apperrors.ErrModelLoad))
	engine.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
}

func TestTranscribeIsSerialized(t *testing.T) {
	var mu sync.Mutex
	active, maxActive := 0, 0

	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil)
	engine.On("Transcribe", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
	}).Return(&provider.Response{Text: "x"}, nil)
	svc := New(engine, defaultConfig(), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transcribe(context.Background(), testAudio())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

func TestTranscribeWithTimestamps(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil)
	engine.On("Transcribe", mock.Anything, mock.Anything).Return(&provider.Response{
		Text:     "Hello world.",
		Language: "en",
		Segments: []model.Segment{
			{ID: 7, Start: 0, End: 1.5, Text: " Hello "},
			{ID: 8, Start: 1.5, End: 3, Text: " world. "},
		},
	}, nil)
	svc := New(engine, defaultConfig(), nil, nil)

	result, err := svc.TranscribeWithTimestamps(context.Background(), testAudio())
	require.NoError(t, err)

	assert.Equal(t, []model.Segment{
		{ID: 0, Start: 0, End: 1.5, Text: "Hello"},
		{ID: 1, Start: 1.5, End: 3, Text: "world."},
	}, result.Segments)
	assert.Equal(t, "Hello world.", result.Text)
}

func TestTranscribeWithTimestampsNoSegments(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil)
	engine.On("Transcribe", mock.Anything, mock.Anything).Return(&provider.Response{Text: "hi"}, nil)
	svc := New(engine, defaultConfig(), nil, nil)

	result, err := svc.TranscribeWithTimestamps(context.Background(), testAudio())
	require.NoError(t, err)
	assert.NotNil(t, result.Segments)
	assert.Empty(t, result.Segments)
}

func TestClose(t *testing.T) {
	engine := &testutil.MockEngine{}
	engine.On("Load", mock.Anything).Return(nil)
	engine.On("Close").Return(nil)
	svc := New(engine, defaultConfig(), nil, nil)

	require.NoError(t, svc.LoadModel(context.Background()))
	require.NoError(t, svc.Close())
	assert.False(t, svc.IsLoaded())

	_, err := svc.Transcribe(context.Background(), testAudio())
	assert.True(t, stderrors.Is(err, apperrors.ErrModelNotLoaded))
	assert.Equal(t, "Model not loaded: service is closed", err.Error())
	engine.AssertNumberOfCalls(t, "Load", 1)
	engine.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
}

func TestResolveOptions(t *testing.T) {
	task, prompt := ResolveOptions()
	assert.Equal(t, provider.TaskTranscribe, task)
	assert.Empty(t, prompt)

	task, prompt = ResolveOptions(WithTask(""), WithPrompt("names"))
	assert.Equal(t, provider.TaskTranscribe, task)
	assert.Equal(t, "names", prompt)

	task, _ = ResolveOptions(WithTask(provider.TaskTranslate))
	assert.Equal(t, provider.TaskTranslate, task)
}
