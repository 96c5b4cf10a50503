package transcribe

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speite/cmd/speite/cmd/cli"
	"speite/internal/app"
	"speite/internal/app/export"
	"speite/internal/app/keywords"
	"speite/internal/app/model"
	"speite/internal/app/stt"
	"speite/internal/config"
)

var (
	modelName    string
	timestamps   bool
	outputPath   string
	formatName   string
	task         string
	keywordFlags []string
)

func init() {
	Cmd.Flags().StringVar(&modelName, "model", "", "Whisper model size: "+strings.Join(config.SupportedModels, "|"))
	Cmd.Flags().BoolVar(&timestamps, "timestamps", false, "include segment timestamps")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the transcription to this file instead of stdout")
	Cmd.Flags().StringVar(&formatName, "format", string(export.FormatText), "output format: "+strings.Join(export.Formats, "|"))
	Cmd.Flags().StringVar(&task, "task", "transcribe", "transcribe or translate (to English)")
	Cmd.Flags().StringSliceVar(&keywordFlags, "keywords", nil, "comma-separated keywords to look for")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audio_file>",
	Short: "Transcribe one audio or video file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audioPath := args[0]
		if _, err := os.Stat(audioPath); err != nil {
			return fmt.Errorf("audio file not found: %s", audioPath)
		}

		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}
		if format.IsBinary() && outputPath == "" {
			return fmt.Errorf("--format %s requires --output", format)
		}
		if err := config.ValidateOneOf(task, []string{"transcribe", "translate"}, "task"); err != nil {
			return err
		}

		settings, logger, err := cli.Setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if modelName != "" {
			if err := config.ValidateOneOf(modelName, config.SupportedModels, "model"); err != nil {
				return err
			}
			settings.WhisperModelName = modelName
		}

		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		application, cleanup, err := app.InitializeApplication(settings, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		logger.Info("Processing audio file", zap.String("file", audioPath))
		buf, err := application.Preprocessor.Preprocess(ctx, audioPath)
		if err != nil {
			return err
		}

		transcribe := application.STT.Transcribe
		if needsSegments(format, timestamps) {
			transcribe = application.STT.TranscribeWithTimestamps
		}
		result, err := transcribe(ctx, buf, stt.WithTask(task))
		if err != nil {
			return err
		}

		found := keywords.Detect(result.Text, keywords.Parse(keywordFlags))

		out := cmd.OutOrStdout()
		if outputPath != "" {
			if err := export.WriteFile(outputPath, result, format, timestamps); err != nil {
				return err
			}
			fmt.Fprintf(out, "Transcription saved to: %s\n", outputPath)
			printKeywords(out, found)
			return nil
		}
		return writeFramed(out, result, format, timestamps, found)
	},
}

func needsSegments(format export.Format, timestamps bool) bool {
	switch format {
	case export.FormatSRT, export.FormatVTT, export.FormatXLSX:
		return true
	}
	return timestamps
}

// writeFramed prints the result between two rules under a TRANSCRIPTION title
func writeFramed(w io.Writer, result *model.Result, format export.Format, timestamps bool, found []string) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nTRANSCRIPTION\n%s\n", rule, rule)
	if err := export.Render(w, result, format, timestamps); err != nil {
		return err
	}
	fmt.Fprintln(w, rule)
	printKeywords(w, found)
	return nil
}

func printKeywords(w io.Writer, found []string) {
	if len(found) > 0 {
		fmt.Fprintf(w, "Keywords found: %s\n", strings.Join(found, ", "))
	}
}
