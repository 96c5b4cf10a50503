package serve

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speite/cmd/speite/cmd/cli"
	"speite/cmd/speite/cmd/version"
	"speite/internal/app"
)

const shutdownTimeout = 30 * time.Second

var (
	host    string
	port    int
	preload bool
)

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "address to bind (default from SPEITE_API_HOST)")
	Cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default from SPEITE_API_PORT)")
	Cmd.Flags().BoolVar(&preload, "preload", true, "load the model before accepting requests")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server.

Endpoints: GET /, GET /health, GET /models, POST /transcribe, GET /metrics
and the upload page at /ui/. Stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := cli.Setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if host != "" {
			settings.APIHost = host
		}
		if port != 0 {
			settings.APIPort = port
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		apiServer, cleanup, err := app.InitializeServer(settings, logger, app.Version(version.Version))
		if err != nil {
			return err
		}
		defer cleanup()

		if preload {
			logger.Info("Preloading model", zap.String("model", settings.WhisperModelName))
			if err := apiServer.STT.LoadModel(ctx); err != nil {
				return err
			}
		}

		errCh, err := apiServer.Server.Start()
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return apiServer.Server.Shutdown(shutdownCtx)
	},
}
