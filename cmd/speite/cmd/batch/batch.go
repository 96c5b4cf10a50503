package batch

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"speite/cmd/speite/cmd/cli"
	"speite/internal/app"
	"speite/internal/app/converter"
	"speite/internal/app/export"
	"speite/internal/app/util/files"
)

var (
	inputDir   string
	outputDir  string
	formatName string
	extensions []string
	parallel   int
	overwrite  bool
	timestamps bool
	task       string
	progress   bool
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "directory of audio files to transcribe")
	Cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "where to write the transcripts (default: next to the inputs)")
	Cmd.Flags().StringVar(&formatName, "format", string(export.FormatText), "output format: "+strings.Join(export.Formats, "|"))
	Cmd.Flags().StringSliceVar(&extensions, "ext", files.DefaultAudioExtensions, "file extensions to pick up with --dir")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "files preprocessed concurrently; inference is always serialized")
	Cmd.Flags().BoolVar(&overwrite, "overwrite", false, "re-transcribe files whose output already exists")
	Cmd.Flags().BoolVar(&timestamps, "timestamps", false, "include segment timestamps in text output")
	Cmd.Flags().StringVar(&task, "task", "transcribe", "transcribe or translate (to English)")
	Cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar even when stderr is not a terminal")
}

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Transcribe many files in one run",
	Long: `Transcribe many files in one run

- Pass files as arguments, or a directory with --dir
- One output is written per input, named after it
- Inputs sharing a name keep their extension (talk.wav.txt, talk.mp3.txt)
- Existing outputs are skipped unless --overwrite is set
- A failing file is reported and the batch continues`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputDir == "" && len(args) == 0 {
			return fmt.Errorf("pass audio files or --dir")
		}
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		settings, logger, err := cli.Setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		conv, cleanup, err := app.InitializeConverter(settings, logger, converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(progress),
			Writer:  os.Stderr,
		})
		if err != nil {
			return err
		}
		defer cleanup()

		out := outputDir
		if out == "" {
			out = inputDir
		}
		opts := converter.Options{
			OutputDir:  out,
			Format:     format,
			Timestamps: timestamps,
			Task:       task,
			Parallel:   parallel,
			Overwrite:  overwrite,
		}

		var results []converter.FileResult
		if inputDir != "" {
			results, err = conv.ConvertDir(ctx, inputDir, extensions, opts)
		} else {
			results, err = conv.ConvertFiles(ctx, args, opts)
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, r := range results {
			switch {
			case r.Err != nil:
				fmt.Fprintf(w, "FAILED  %s: %v\n", r.Input, r.Err)
			case r.Skipped:
				fmt.Fprintf(w, "SKIPPED %s\n", r.Input)
			default:
				fmt.Fprintf(w, "OK      %s -> %s\n", r.Input, r.Output)
			}
		}

		converted, skipped, failed := converter.Summarize(results)
		fmt.Fprintf(w, "\n%d converted, %d skipped, %d failed\n", converted, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}
