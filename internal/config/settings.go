package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "speite/internal/app/errors"
)

// Settings holds every tunable of the service and the CLI.
type Settings struct {
	// Model
	WhisperModelName string `yaml:"whisper_model_name"`
	Device           string `yaml:"device"`
	Language         string `yaml:"language"`
	Engine           string `yaml:"engine"`
	ModelCacheDir    string `yaml:"model_cache_dir"`
	ModelDownload    bool   `yaml:"model_download"`
	ModelBaseURL     string `yaml:"model_base_url"`

	// Audio
	SampleRate       int    `yaml:"sample_rate"`
	MaxAudioDuration int    `yaml:"max_audio_duration"`
	Normalize        bool   `yaml:"normalize"`
	FFmpegPath       string `yaml:"ffmpeg_path"`
	FFprobePath      string `yaml:"ffprobe_path"`

	// API
	APIHost       string        `yaml:"api_host"`
	APIPort       int           `yaml:"api_port"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
	ServerTimeout time.Duration `yaml:"server_timeout"` // read and write; covers upload and inference

	// Engines
	WhisperCppBinary       string        `yaml:"whisper_cpp_binary"`
	WhisperCppThreads      int           `yaml:"whisper_cpp_threads"`
	WhisperServerURL       string        `yaml:"whisper_server_url"`
	WhisperServerModelPath string        `yaml:"whisper_server_model_path"`
	OpenAIBaseURL          string        `yaml:"openai_base_url"`
	OpenAIAPIKey           string        `yaml:"openai_api_key"`
	OpenAIModel            string        `yaml:"openai_model"`
	InferenceTimeout       time.Duration `yaml:"inference_timeout"`

	// Process
	LogLevel    string `yaml:"log_level"`
	Environment string `yaml:"environment"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		WhisperModelName:  DefaultWhisperModel,
		Device:            DefaultDevice,
		Language:          DefaultLanguage,
		Engine:            DefaultEngine,
		ModelCacheDir:     defaultCacheDir(),
		ModelDownload:     true,
		ModelBaseURL:      DefaultModelBaseURL,
		SampleRate:        DefaultSampleRate,
		MaxAudioDuration:  DefaultMaxAudioDuration,
		FFmpegPath:        DefaultFFmpegPath,
		FFprobePath:       DefaultFFprobePath,
		APIHost:           DefaultAPIHost,
		APIPort:           DefaultAPIPort,
		MaxUploadSize:     DefaultMaxUploadSize,
		ServerTimeout:     DefaultServerTimeout,
		WhisperCppBinary:  DefaultWhisperCppBinary,
		WhisperCppThreads: DefaultWhisperCppThreads,
		WhisperServerURL:  DefaultWhisperServerURL,
		OpenAIBaseURL:     DefaultOpenAIBaseURL,
		OpenAIModel:       DefaultOpenAIModel,
		InferenceTimeout:  DefaultInferenceTimeout,
		LogLevel:          DefaultLogLevel,
		Environment:       DefaultEnvironment,
	}
}

// Load builds Settings from defaults, an optional YAML file, .env files and
// SPEITE_* environment variables, in increasing order of precedence.
// When path is empty SPEITE_CONFIG is consulted.
func Load(path string) (*Settings, error) {
	s := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := s.loadFile(path); err != nil {
			return nil, err
		}
	}

	if _, err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := s.applyEnv(prefixedEnv()); err != nil {
		return nil, err
	}

	s.ModelCacheDir = expandHome(s.ModelCacheDir)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "parse %s: %v", path, err)
	}
	return nil
}

// applyEnv overrides fields from lower-cased setting names.
func (s *Settings) applyEnv(vars map[string]string) error {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	num := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	boolean := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}

	duration := func(dst *time.Duration) func(string) error {
		return func(v string) error {
			d, err := parseDuration(v)
			if err != nil {
				return err
			}
			*dst = d
			return nil
		}
	}

	setters := map[string]func(string) error{
		"whisper_model_name":        str(&s.WhisperModelName),
		"device":                    str(&s.Device),
		"language":                  str(&s.Language),
		"engine":                    str(&s.Engine),
		"model_cache_dir":           str(&s.ModelCacheDir),
		"model_download":            boolean(&s.ModelDownload),
		"model_base_url":            str(&s.ModelBaseURL),
		"sample_rate":               num(&s.SampleRate),
		"max_audio_duration":        num(&s.MaxAudioDuration),
		"normalize":                 boolean(&s.Normalize),
		"ffmpeg_path":               str(&s.FFmpegPath),
		"ffprobe_path":              str(&s.FFprobePath),
		"api_host":                  str(&s.APIHost),
		"api_port":                  num(&s.APIPort),
		"whisper_cpp_binary":        str(&s.WhisperCppBinary),
		"whisper_cpp_threads":       num(&s.WhisperCppThreads),
		"whisper_server_url":        str(&s.WhisperServerURL),
		"whisper_server_model_path": str(&s.WhisperServerModelPath),
		"openai_base_url":           str(&s.OpenAIBaseURL),
		"openai_api_key":            str(&s.OpenAIAPIKey),
		"openai_model":              str(&s.OpenAIModel),
		"log_level":                 str(&s.LogLevel),
		"environment":               str(&s.Environment),
		"inference_timeout":         duration(&s.InferenceTimeout),
		"server_timeout":            duration(&s.ServerTimeout),
		"max_upload_size": func(v string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return err
			}
			s.MaxUploadSize = n
			return nil
		},
	}

	for key, value := range vars {
		set, ok := setters[key]
		if !ok {
			continue
		}
		if err := set(value); err != nil {
			return apperrors.InvalidField(EnvPrefix+strings.ToUpper(key), err.Error())
		}
	}
	return nil
}

// Validate checks the settings for values the service cannot run with.
// Device and language are not checked here; the STT service overrides them.
func (s *Settings) Validate() error {
	if err := ValidateOneOf(s.WhisperModelName, SupportedModels, "whisper_model_name"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	if err := ValidateOneOf(s.Engine, SupportedEngines, "engine"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	if s.SampleRate < MinSampleRate || s.SampleRate > MaxSampleRate {
		return apperrors.OutOfRange("sample_rate", MinSampleRate, MaxSampleRate)
	}
	if err := ValidatePositive(int64(s.MaxAudioDuration), "max_audio_duration"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	if err := ValidatePositive(s.MaxUploadSize, "max_upload_size"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	if err := ValidatePort(s.APIPort, "api"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	if err := ValidateTimeout(s.InferenceTimeout, "inference"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	if err := ValidateTimeout(s.ServerTimeout, "server"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}

	switch s.Engine {
	case EngineWhisperCpp:
		if s.WhisperCppThreads <= 0 {
			return apperrors.OutOfRange("whisper_cpp_threads", 1, 256)
		}
		if s.ModelDownload {
			if err := ValidateURL(s.ModelBaseURL, "model base"); err != nil {
				return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
			}
		}
	case EngineWhisperServer:
		if err := ValidateURL(s.WhisperServerURL, "whisper server"); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
		}
	case EngineOpenAI:
		if err := ValidateURL(s.OpenAIBaseURL, "openai base"); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
		}
	}
	return nil
}

// Address returns host:port for the HTTP listener.
func (s *Settings) Address() string {
	return fmt.Sprintf("%s:%d", s.APIHost, s.APIPort)
}

// IsProduction reports whether the process runs in production mode.
func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// parseDuration accepts Go durations ("90s") and bare seconds ("90").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func defaultCacheDir() string {
	return filepath.Join("~", ".cache", "whisper")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
