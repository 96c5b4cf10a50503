package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"speite/internal/app/audio"
	"speite/internal/app/export"
	"speite/internal/app/model"
	"speite/internal/app/stt"
	"speite/internal/app/util/files"
)

// Transcriber is the part of stt.Service the converter needs
type Transcriber interface {
	Transcribe(ctx context.Context, buf audio.Buffer, opts ...stt.Option) (*model.Result, error)
	TranscribeWithTimestamps(ctx context.Context, buf audio.Buffer, opts ...stt.Option) (*model.Result, error)
}

// Preprocessor turns a file into a model-ready buffer
type Preprocessor interface {
	Preprocess(ctx context.Context, path string) (audio.Buffer, error)
}

// Options controls a batch run
type Options struct {
	OutputDir  string // empty writes each output next to its input
	Format     export.Format
	Timestamps bool
	Task       string
	Parallel   int  // concurrent preprocessing workers; inference stays serialized
	Overwrite  bool // re-transcribe files whose output already exists
}

// FileResult is the outcome for one input file
type FileResult struct {
	Input   string
	Output  string
	Skipped bool
	Result  *model.Result
	Err     error
}

type Converter struct {
	transcriber  Transcriber
	preprocessor Preprocessor
	progress     ProgressConfig
	logger       *zap.Logger
}

func NewConverter(transcriber Transcriber, preprocessor Preprocessor, progress ProgressConfig, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		transcriber:  transcriber,
		preprocessor: preprocessor,
		progress:     progress,
		logger:       logger,
	}
}

// ConvertDir transcribes every matching file in inputDir, oldest first
func (c *Converter) ConvertDir(ctx context.Context, inputDir string, extensions []string, opts Options) ([]FileResult, error) {
	fileInfos, err := files.GetAllFiles(inputDir, extensions...)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(fileInfos))
	for i, f := range fileInfos {
		paths[i] = f.FullPath
	}
	c.logger.Info("Found files to transcribe", zap.String("dir", inputDir), zap.Int("count", len(paths)))
	return c.ConvertFiles(ctx, paths, opts)
}

// ConvertFiles transcribes paths and writes one output per input into
// opts.OutputDir. Results are returned in input order; a failing file does not
// stop the batch.
func (c *Converter) ConvertFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if opts.Format == "" {
		opts.Format = export.FormatText
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}
	if opts.OutputDir != "" {
		if err := files.CheckAndCreateDirectory(opts.OutputDir); err != nil {
			return nil, err
		}
	}

	results := make([]FileResult, len(paths))
	outputs := planOutputs(paths, opts)
	progress := newBatchProgress(c.progress, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.Parallel)

	owners := make(map[string]string, len(paths))
	for i, path := range paths {
		if owner, dup := owners[outputs[i]]; dup {
			results[i] = FileResult{
				Input:  path,
				Output: outputs[i],
				Err:    fmt.Errorf("output %s is already written for %s", outputs[i], owner),
			}
			progress.fileDone(results[i])
			continue
		}
		owners[outputs[i]] = path

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { progress.fileDone(results[i]) }()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = FileResult{Input: path, Err: ctx.Err()}
				return
			}
			results[i] = c.convertFile(ctx, path, outputs[i], opts)
			<-sem
		}(i, path)
	}
	wg.Wait()

	progress.finish()
	return results, ctx.Err()
}

// planOutputs names one output per input. Inputs whose names differ only by
// extension keep it, so talk.wav and talk.mp3 write talk.wav.txt and
// talk.mp3.txt. The same input listed twice still maps to one path.
func planOutputs(paths []string, opts Options) []string {
	ext := opts.Format.Extension()
	dirFor := func(path string) string {
		if opts.OutputDir != "" {
			return opts.OutputDir
		}
		return filepath.Dir(path)
	}

	outputs := make([]string, len(paths))
	stems := make(map[string]map[string]struct{}, len(paths))
	for i, path := range paths {
		outputs[i] = files.OutputPath(dirFor(path), path, ext)
		if stems[outputs[i]] == nil {
			stems[outputs[i]] = map[string]struct{}{}
		}
		stems[outputs[i]][filepath.Clean(path)] = struct{}{}
	}
	for i, path := range paths {
		if len(stems[outputs[i]]) > 1 {
			outputs[i] = files.OutputPathWithSourceExt(dirFor(path), path, ext)
		}
	}
	return outputs
}

func (c *Converter) convertFile(ctx context.Context, path, output string, opts Options) FileResult {
	res := FileResult{
		Input:  path,
		Output: output,
	}

	if !opts.Overwrite && files.Exists(res.Output) {
		c.logger.Info("Output exists, skipping", zap.String("file", path), zap.String("output", res.Output))
		res.Skipped = true
		return res
	}

	buf, err := c.preprocessor.Preprocess(ctx, path)
	if err != nil {
		res.Err = err
		c.logger.Error("Error preprocessing file", zap.String("file", path), zap.Error(err))
		return res
	}

	transcribe := c.transcriber.Transcribe
	if opts.Timestamps || opts.Format == export.FormatSRT || opts.Format == export.FormatVTT || opts.Format == export.FormatXLSX {
		transcribe = c.transcriber.TranscribeWithTimestamps
	}

	result, err := transcribe(ctx, buf, stt.WithTask(opts.Task))
	if err != nil {
		res.Err = err
		c.logger.Error("Error transcribing file", zap.String("file", path), zap.Error(err))
		return res
	}
	res.Result = result

	if err := export.WriteFile(res.Output, result, opts.Format, opts.Timestamps); err != nil {
		res.Err = fmt.Errorf("failed to write %s: %w", res.Output, err)
		return res
	}

	c.logger.Info("Successfully transcribed file", zap.String("file", path), zap.String("output", res.Output))
	return res
}

// Summarize counts converted, skipped and failed files
func Summarize(results []FileResult) (converted, skipped, failed int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Skipped:
			skipped++
		default:
			converted++
		}
	}
	return converted, skipped, failed
}
