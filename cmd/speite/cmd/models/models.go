package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"speite/cmd/speite/cmd/cli"
	"speite/internal/app"
	"speite/internal/app/api/provider"
	"speite/internal/config"
	"speite/internal/downloader"
)

func init() {
	Cmd.AddCommand(downloadCmd)
}

// Cmd represents the models command
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "Show the configured model and the local model cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := cli.Setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		application, cleanup, err := app.InitializeApplication(settings, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		info := application.STT.ModelInfo()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Model:    %s\n", info.ModelName)
		fmt.Fprintf(w, "Engine:   %s\n", info.Engine)
		fmt.Fprintf(w, "Device:   %s\n", info.Device)
		fmt.Fprintf(w, "Language: %s\n", info.Language)
		fmt.Fprintf(w, "Engines:  %s\n", strings.Join(provider.ListEngines(), ", "))
		fmt.Fprintln(w)
		printCache(w, settings.ModelCacheDir)
		return nil
	},
}

func printCache(w io.Writer, cacheDir string) {
	fmt.Fprintf(w, "Cache: %s\n", cacheDir)
	for _, name := range config.SupportedModels {
		state := "-"
		if fi, err := os.Stat(modelPath(cacheDir, name)); err == nil {
			state = fmt.Sprintf("%.1f MB", float64(fi.Size())/1024/1024)
		}
		fmt.Fprintf(w, "  %-7s %s\n", name, state)
	}
}

func modelPath(cacheDir, name string) string {
	return filepath.Join(cacheDir, provider.ModelFileName(name))
}

func modelURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + provider.ModelFileName(name)
}

var downloadCmd = &cobra.Command{
	Use:   "download [name]",
	Short: "Download ggml weights into the model cache",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := cli.Setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		name := settings.WhisperModelName
		if len(args) == 1 {
			name = args[0]
		}
		if err := config.ValidateOneOf(name, config.SupportedModels, "model"); err != nil {
			return err
		}

		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		dest := modelPath(settings.ModelCacheDir, name)
		d := downloader.NewModelDownloader(nil, os.Stderr, logger)
		if err := d.Ensure(ctx, modelURL(settings.ModelBaseURL, name), dest); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model %s ready at %s\n", name, dest)
		return nil
	},
}
