package whisper_server

import (
	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/config"
)

func init() {
	provider.RegisterEngine(config.EngineWhisperServer, createWhisperServerEngine)
}

func createWhisperServerEngine(settings *config.Settings, logger *zap.Logger) (provider.Engine, error) {
	if err := config.ValidateURL(settings.WhisperServerURL, "whisper server"); err != nil {
		return nil, err
	}

	return NewWhisperServerEngine(WhisperServerConfig{
		BaseURL:   settings.WhisperServerURL,
		ModelPath: settings.WhisperServerModelPath,
		Timeout:   settings.InferenceTimeout,
		Language:  settings.Language,
	}, logger.Named(config.EngineWhisperServer)), nil
}
