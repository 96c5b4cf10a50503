package app

import (
	"go.uber.org/zap"

	"speite/internal/api/server"
	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
	"speite/internal/app/metrics"
	"speite/internal/app/stt"
	"speite/internal/config"
)

// Version is the build version reported by the API
type Version string

// Application bundles the long-lived components the CLI works with
type Application struct {
	Settings     *config.Settings
	STT          *stt.Service
	Preprocessor *audio.Preprocessor
	Metrics      *metrics.Metrics
}

// APIServer is the HTTP server together with the service it fronts, so the
// caller can preload the model before serving.
type APIServer struct {
	Server *server.Server
	STT    *stt.Service
}

// ProvideEngine builds the engine selected by settings.Engine
func ProvideEngine(settings *config.Settings, logger *zap.Logger) (provider.Engine, error) {
	return provider.NewEngine(settings, logger)
}

// ProvideSTT wraps the engine in the single-model service. The cleanup closes the engine.
func ProvideSTT(engine provider.Engine, settings *config.Settings, m *metrics.Metrics, logger *zap.Logger) (*stt.Service, func()) {
	svc := stt.New(engine, stt.ServiceConfig{
		ModelName: settings.WhisperModelName,
		Device:    settings.Device,
		Language:  settings.Language,
	}, m, logger)

	return svc, func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close engine", zap.Error(err))
		}
	}
}

func ProvideFFmpeg(settings *config.Settings) *audio.FFmpeg {
	return audio.NewFFmpeg(settings.FFmpegPath, settings.FFprobePath)
}

func ProvidePreprocessor(settings *config.Settings, ffmpeg *audio.FFmpeg, logger *zap.Logger) *audio.Preprocessor {
	return audio.NewPreprocessor(audio.PreprocessorConfig{
		TargetSampleRate: settings.SampleRate,
		MaxDuration:      settings.MaxAudioDuration,
		Normalize:        settings.Normalize,
	}, ffmpeg, logger)
}

func ProvideServerConfig(settings *config.Settings, version Version) server.Config {
	return server.Config{
		Host:          settings.APIHost,
		Port:          settings.APIPort,
		ReadTimeout:   settings.ServerTimeout,
		WriteTimeout:  settings.ServerTimeout,
		IdleTimeout:   config.DefaultServerIdleTimeout,
		Environment:   settings.Environment,
		MaxUploadSize: settings.MaxUploadSize,
		Version:       string(version),
	}
}
