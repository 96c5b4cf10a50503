package whisper_cpp

import (
	"os"

	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/config"
	"speite/internal/downloader"
)

func init() {
	// Register whisper_cpp engine with the registry
	provider.RegisterEngine(config.EngineWhisperCpp, createWhisperCppEngine)
}

// createWhisperCppEngine creates a whisper.cpp engine from settings
func createWhisperCppEngine(settings *config.Settings, logger *zap.Logger) (provider.Engine, error) {
	fetcher := downloader.NewModelDownloader(nil, os.Stderr, logger)

	return NewLocalTranscriber(Config{
		BinaryPath:   settings.WhisperCppBinary,
		ModelName:    settings.WhisperModelName,
		ModelDir:     settings.ModelCacheDir,
		ModelBaseURL: settings.ModelBaseURL,
		Download:     settings.ModelDownload,
		Threads:      settings.WhisperCppThreads,
		Language:     settings.Language,
		Timeout:      settings.InferenceTimeout,
	}, fetcher, logger.Named(config.EngineWhisperCpp)), nil
}
