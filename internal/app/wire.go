//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"speite/internal/api/server"
	"speite/internal/api/v1/services"
	"speite/internal/app/audio"
	"speite/internal/app/converter"
	"speite/internal/app/metrics"
	"speite/internal/app/stt"
	"speite/internal/config"
)

var coreSet = wire.NewSet(
	metrics.NewMetrics,
	ProvideEngine,
	ProvideSTT,
	ProvideFFmpeg,
	ProvidePreprocessor,
)

// InitializeApplication builds the model service and preprocessor for one-shot CLI use
func InitializeApplication(settings *config.Settings, logger *zap.Logger) (*Application, func(), error) {
	wire.Build(coreSet, wire.Struct(new(Application), "*"))
	return nil, nil, nil
}

// InitializeServer builds the HTTP API
func InitializeServer(settings *config.Settings, logger *zap.Logger, version Version) (*APIServer, func(), error) {
	wire.Build(
		coreSet,
		ProvideServerConfig,
		services.NewTranscriptionService,
		wire.Bind(new(services.SpeechToText), new(*stt.Service)),
		wire.Bind(new(services.AudioPreprocessor), new(*audio.Preprocessor)),
		server.NewServer,
		wire.Struct(new(APIServer), "*"),
	)
	return nil, nil, nil
}

// InitializeConverter builds the batch converter
func InitializeConverter(settings *config.Settings, logger *zap.Logger, progress converter.ProgressConfig) (*converter.Converter, func(), error) {
	wire.Build(
		coreSet,
		converter.NewConverter,
		wire.Bind(new(converter.Transcriber), new(*stt.Service)),
		wire.Bind(new(converter.Preprocessor), new(*audio.Preprocessor)),
	)
	return nil, nil, nil
}
