package whisper

import (
	"os"

	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/config"
)

func init() {
	provider.RegisterEngine(config.EngineOpenAI, createOpenAIEngine)
}

// createOpenAIEngine builds the engine from settings. A missing key falls back
// to OPENAI_API_KEY; local servers usually accept any value.
func createOpenAIEngine(settings *config.Settings, logger *zap.Logger) (provider.Engine, error) {
	if err := config.ValidateURL(settings.OpenAIBaseURL, "openai base"); err != nil {
		return nil, err
	}

	apiKey := settings.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return NewRemoteTranscriber(Config{
		APIKey:   apiKey,
		BaseURL:  settings.OpenAIBaseURL,
		Model:    settings.OpenAIModel,
		Language: settings.Language,
		Timeout:  settings.InferenceTimeout,
	}, logger.Named(config.EngineOpenAI)), nil
}
