// Package cli holds the setup shared by every subcommand.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speite/internal/app/logging"
	"speite/internal/config"
)

// Persistent flag names defined on the root command
const (
	FlagVerbose = "verbose"
	FlagConfig  = "config"
)

// Setup loads settings and builds the process logger from the root flags.
// The logger writes to stderr so stdout stays free for results.
func Setup(cmd *cobra.Command) (*config.Settings, *zap.Logger, error) {
	configPath, _ := cmd.Flags().GetString(FlagConfig)
	verbose, _ := cmd.Flags().GetBool(FlagVerbose)

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(logging.Options{
		Development: !settings.IsProduction(),
		Level:       settings.LogLevel,
		Verbose:     verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	return settings, logger, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
