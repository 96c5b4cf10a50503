package stt

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
	"speite/internal/app/errors"
	"speite/internal/app/metrics"
	"speite/internal/app/model"
	"speite/internal/config"
)

// ServiceConfig names the model the service holds
type ServiceConfig struct {
	ModelName  string
	EngineName string
	Device     string
	Language   string
}

// Service owns the single model handle of the process. Loading happens at most
// once; inference calls are serialized.
type Service struct {
	engine  provider.Engine
	config  ServiceConfig
	metrics *metrics.Metrics
	logger  *zap.Logger

	loadMu  sync.Mutex
	loaded  atomic.Bool
	closed  atomic.Bool
	inferMu sync.Mutex
}

// Option tunes a single transcription call
type Option func(*transcribeOptions)

type transcribeOptions struct {
	task   string
	prompt string
}

// WithTask selects "transcribe" or "translate"
func WithTask(task string) Option {
	return func(o *transcribeOptions) {
		if task != "" {
			o.task = task
		}
	}
}

// WithPrompt passes an initial prompt to the decoder
func WithPrompt(prompt string) Option {
	return func(o *transcribeOptions) {
		o.prompt = prompt
	}
}

// ResolveOptions applies opts over the defaults and returns the requested task
// and prompt.
func ResolveOptions(opts ...Option) (task, prompt string) {
	o := transcribeOptions{task: provider.TaskTranscribe}
	for _, opt := range opts {
		opt(&o)
	}
	return o.task, o.prompt
}

// New creates the service. Only CPU inference and English are supported, so
// other values are replaced and a warning is logged.
func New(engine provider.Engine, cfg ServiceConfig, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ModelName == "" {
		cfg.ModelName = config.DefaultWhisperModel
	}
	if cfg.EngineName == "" {
		cfg.EngineName = engine.Info().Name
	}

	if cfg.Device != config.DefaultDevice {
		logger.Warn("Device requested, but forcing CPU for offline mode", zap.String("device", cfg.Device))
		cfg.Device = config.DefaultDevice
	}
	if cfg.Language != config.DefaultLanguage {
		logger.Warn("Language requested, but only English is supported", zap.String("language", cfg.Language))
		cfg.Language = config.DefaultLanguage
	}

	logger.Info("Speech-to-text service initialized",
		zap.String("model", cfg.ModelName),
		zap.String("engine", cfg.EngineName),
		zap.String("device", cfg.Device),
		zap.String("language", cfg.Language))

	m.SetModelLoaded(false)
	return &Service{
		engine:  engine,
		config:  cfg,
		metrics: m,
		logger:  logger,
	}
}

// LoadModel loads the model once. Concurrent callers wait for the first load;
// a failed load leaves the service unloaded so a later call can retry.
func (s *Service) LoadModel(ctx context.Context) error {
	if s.loaded.Load() {
		return nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.loaded.Load() {
		s.logger.Debug("Model already loaded")
		return nil
	}
	if s.closed.Load() {
		return errors.Detail(errors.ErrModelNotLoaded, "Model not loaded: service is closed")
	}

	s.logger.Info("Loading Whisper model", zap.String("model", s.config.ModelName))
	start := time.Now()
	if err := s.engine.Load(ctx); err != nil {
		s.logger.Error("Failed to load model", zap.String("model", s.config.ModelName), zap.Error(err))
		return errors.Detail(errors.ErrModelLoad, "Model loading failed: %v", err)
	}

	s.loaded.Store(true)
	s.metrics.SetModelLoaded(true)
	s.logger.Info("Model loaded",
		zap.String("model", s.config.ModelName),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// IsLoaded reports whether the model handle is ready
func (s *Service) IsLoaded() bool {
	return s.loaded.Load()
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded.Load() {
		return nil
	}
	return s.LoadModel(ctx)
}

// Transcribe runs inference on a preprocessed buffer.
func (s *Service) Transcribe(ctx context.Context, buf audio.Buffer, opts ...Option) (*model.Result, error) {
	task, prompt := ResolveOptions(opts...)
	if task != provider.TaskTranscribe && task != provider.TaskTranslate {
		return nil, errors.Wrapf(errors.ErrTranscription, "unsupported task %q", task)
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.inferMu.Lock()
	defer s.inferMu.Unlock()

	s.logger.Info("Starting transcription", zap.String("task", task), zap.Float64("audio_seconds", buf.Duration()))
	start := time.Now()

	resp, err := s.engine.Transcribe(ctx, &provider.Request{
		Audio:    buf,
		Language: s.config.Language,
		Task:     task,
		Prompt:   prompt,
	})
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.RecordTranscription(metrics.StatusError, elapsed, buf.Duration())
		s.logger.Error("Transcription failed", zap.Error(err))
		return nil, errors.Detail(errors.ErrTranscription, "Transcription error: %v", err)
	}

	language := resp.Language
	if language == "" {
		language = s.config.Language
	}

	result := &model.Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: language,
		Segments: resp.Segments,
		Duration: buf.Duration(),
	}

	s.metrics.RecordTranscription(metrics.StatusSuccess, elapsed, buf.Duration())
	s.logger.Info("Transcription completed",
		zap.Int("characters", len(result.Text)),
		zap.Int("segments", len(result.Segments)),
		zap.Duration("elapsed", elapsed))
	return result, nil
}

// TranscribeWithTimestamps is Transcribe with segments reduced to start, end
// and trimmed text.
func (s *Service) TranscribeWithTimestamps(ctx context.Context, buf audio.Buffer, opts ...Option) (*model.Result, error) {
	result, err := s.Transcribe(ctx, buf, opts...)
	if err != nil {
		return nil, err
	}

	segments := make([]model.Segment, 0, len(result.Segments))
	for i, seg := range result.Segments {
		segments = append(segments, model.Segment{
			ID:    i,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return &model.Result{
		Text:     result.Text,
		Language: result.Language,
		Segments: segments,
		Duration: result.Duration,
	}, nil
}

// ModelInfo describes the held model
func (s *Service) ModelInfo() model.ModelInfo {
	return model.ModelInfo{
		ModelName: s.config.ModelName,
		Engine:    s.config.EngineName,
		Device:    s.config.Device,
		Language:  s.config.Language,
		Loaded:    s.loaded.Load(),
	}
}

// Close releases the engine. A closed service does not load again.
func (s *Service) Close() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.closed.Store(true)
	s.loaded.Store(false)
	s.metrics.SetModelLoaded(false)
	return s.engine.Close()
}
