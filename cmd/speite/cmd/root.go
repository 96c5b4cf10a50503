package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"speite/cmd/speite/cmd/batch"
	"speite/cmd/speite/cmd/cli"
	"speite/cmd/speite/cmd/evaluate"
	"speite/cmd/speite/cmd/models"
	"speite/cmd/speite/cmd/serve"
	"speite/cmd/speite/cmd/transcribe"
	"speite/cmd/speite/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "speite",
	Short: "Offline speech-to-text with Whisper",
	Long: `Offline speech-to-text with Whisper.

- Transcribe a single audio or video file from the command line
- Batch transcribe a directory into text, JSON, subtitles or Excel
- Serve a REST API and a small upload page
Audio is converted to 16kHz mono before inference. Settings come from
SPEITE_* environment variables, .env files or a YAML file.`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(batch.Cmd)
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(evaluate.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolP(cli.FlagVerbose, "v", false, "verbose output")
	rootCmd.PersistentFlags().String(cli.FlagConfig, "", "config file (default is $SPEITE_CONFIG)")
}
