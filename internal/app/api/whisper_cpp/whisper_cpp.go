package whisper_cpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"speite/internal/app/api/provider"
	"speite/internal/app/audio"
	"speite/internal/app/model"
)

const engineName = "whisper_cpp"

// ModelFetcher downloads model weights into the cache.
type ModelFetcher interface {
	Ensure(ctx context.Context, url, dest string) error
}

// Config represents configuration specific to the local whisper.cpp engine
type Config struct {
	BinaryPath   string
	ModelName    string
	ModelDir     string
	ModelBaseURL string
	Download     bool
	Threads      int
	Language     string
	TempDir      string
	Timeout      time.Duration // per call; zero leaves only the caller's deadline
}

// LocalTranscriber runs inference by invoking the whisper.cpp command line binary.
type LocalTranscriber struct {
	config    Config
	fetcher   ModelFetcher
	logger    *zap.Logger
	modelPath string
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(config Config, fetcher ModelFetcher, logger *zap.Logger) *LocalTranscriber {
	if config.Threads <= 0 {
		config.Threads = 4
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalTranscriber{config: config, fetcher: fetcher, logger: logger}
}

// ModelPath returns where the ggml weights for the configured model live.
func (lt *LocalTranscriber) ModelPath() string {
	if filepath.IsAbs(lt.config.ModelName) {
		return lt.config.ModelName
	}
	return filepath.Join(lt.config.ModelDir, provider.ModelFileName(lt.config.ModelName))
}

// Load checks the binary and makes the model weights available locally.
func (lt *LocalTranscriber) Load(ctx context.Context) error {
	if _, err := exec.LookPath(lt.config.BinaryPath); err != nil {
		return &provider.TranscriptionError{
			Code:        "binary_not_found",
			Message:     fmt.Sprintf("whisper.cpp binary not found: %s", lt.config.BinaryPath),
			Provider:    engineName,
			Suggestions: []string{"Install whisper.cpp or set SPEITE_WHISPER_CPP_BINARY"},
		}
	}

	modelPath := lt.ModelPath()
	if _, err := os.Stat(modelPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access model %s: %w", modelPath, err)
		}
		if !lt.config.Download || lt.fetcher == nil {
			return &provider.TranscriptionError{
				Code:        "model_not_found",
				Message:     fmt.Sprintf("whisper model not found at %s", modelPath),
				Provider:    engineName,
				Suggestions: []string{"Run `speite models download " + lt.config.ModelName + "`"},
			}
		}

		url := strings.TrimRight(lt.config.ModelBaseURL, "/") + "/" + filepath.Base(modelPath)
		lt.logger.Info("Model weights missing, downloading", zap.String("url", url))
		if err := lt.fetcher.Ensure(ctx, url, modelPath); err != nil {
			return &provider.TranscriptionError{
				Code:      "model_download_failed",
				Message:   fmt.Sprintf("failed to download model: %v", err),
				Provider:  engineName,
				Retryable: true,
			}
		}
	}

	lt.modelPath = modelPath
	lt.logger.Info("whisper.cpp model ready", zap.String("model", modelPath))
	return nil
}

// Transcribe writes the buffer to a temporary WAV file and runs the binary on it.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, request *provider.Request) (*provider.Response, error) {
	startTime := time.Now()

	if lt.modelPath == "" {
		return nil, provider.NewTranscriptionError(engineName, "not_loaded", false, "model is not loaded")
	}

	workDir, err := os.MkdirTemp(lt.config.TempDir, "whisper_cpp-")
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "temp_dir_error", true, "failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(workDir)

	inputFile := filepath.Join(workDir, "input.wav")
	if err := audio.SaveAudio(request.Audio, inputFile); err != nil {
		return nil, provider.NewTranscriptionError(engineName, "audio_write_error", false, "failed to write audio: %v", err)
	}

	language := lt.config.Language
	if request.Language != "" {
		language = request.Language
	}

	outputPrefix := filepath.Join(workDir, "output")
	args := lt.buildArgs(inputFile, outputPrefix, language, request)

	runCtx := ctx
	if lt.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, lt.config.Timeout)
		defer cancel()
	}

	command := exec.CommandContext(runCtx, lt.config.BinaryPath, args...)
	command.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	lt.logger.Debug("Running transcription command",
		zap.String("binary", lt.config.BinaryPath),
		zap.String("args", strings.Join(args, " ")))

	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if runCtx.Err() != nil {
			return nil, provider.NewTranscriptionError(engineName, "timeout", true,
				"transcription timed out after %s", lt.config.Timeout)
		}
		return nil, provider.NewTranscriptionError(engineName, "command_failed", false,
			"command execution error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outputPrefix + ".json")
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "output_missing", false, "failed to read output file: %v", err)
	}

	response, err := parseOutput(data)
	if err != nil {
		return nil, provider.NewTranscriptionError(engineName, "output_parse_failed", false, "failed to parse output: %v", err)
	}
	if response.Language == "" {
		response.Language = language
	}
	response.Duration = request.Audio.Duration()
	response.ProcessingTime = time.Since(startTime)
	response.ModelUsed = filepath.Base(lt.modelPath)

	lt.logger.Info("Transcription finished",
		zap.Int("segments", len(response.Segments)),
		zap.Duration("elapsed", response.ProcessingTime))
	return response, nil
}

func (lt *LocalTranscriber) buildArgs(inputFile, outputPrefix, language string, request *provider.Request) []string {
	args := []string{
		"-m", lt.modelPath,
		"-f", inputFile,
		"-l", language,
		"-t", strconv.Itoa(lt.config.Threads),
		"-oj",
		"-of", outputPrefix,
		"-np",
	}
	if request.IsTranslate() {
		args = append(args, "-tr")
	}
	if request.Prompt != "" {
		args = append(args, "--prompt", request.Prompt)
	}
	return args
}

// Info returns metadata about the whisper.cpp engine
func (lt *LocalTranscriber) Info() provider.EngineInfo {
	return provider.EngineInfo{
		Name:               engineName,
		DisplayName:        "Whisper.cpp (Local)",
		Type:               provider.EngineTypeLocal,
		Model:              lt.config.ModelName,
		SupportsTimestamps: true,
		SupportsTranslate:  true,
		RequiresBinary:     true,
	}
}

// Close is a no-op; the binary holds no state between runs.
func (lt *LocalTranscriber) Close() error {
	return nil
}

// cppOutput is the document written by `whisper-cli -oj`.
type cppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseOutput(data []byte) (*provider.Response, error) {
	var out cppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	segments := make([]model.Segment, 0, len(out.Transcription))
	for i, t := range out.Transcription {
		segments = append(segments, model.Segment{
			ID:    i,
			Start: float64(t.Offsets.From) / 1000,
			End:   float64(t.Offsets.To) / 1000,
			Text:  t.Text,
		})
	}

	return &provider.Response{
		Text:     model.JoinSegments(segments),
		Language: out.Result.Language,
		Segments: segments,
	}, nil
}
