package config

import "time"

// Default configuration constants
const (
	EnvPrefix = "SPEITE_"

	// Model defaults
	DefaultWhisperModel = "base"
	DefaultDevice       = "cpu"
	DefaultLanguage     = "en"
	DefaultEngine       = EngineWhisperCpp

	// Audio defaults
	DefaultSampleRate       = 16000
	DefaultMaxAudioDuration = 300 // seconds
	MinSampleRate           = 8000
	MaxSampleRate           = 48000

	// API defaults
	DefaultAPIHost           = "0.0.0.0"
	DefaultAPIPort           = 8000
	DefaultMaxUploadSize     = 50 * 1024 * 1024
	DefaultServerTimeout     = 360 * time.Second // read/write, covers upload and inference
	DefaultServerIdleTimeout = 120 * time.Second

	// Engine defaults
	DefaultWhisperCppBinary  = "whisper-cli"
	DefaultWhisperCppThreads = 4
	DefaultWhisperServerURL  = "http://127.0.0.1:8080"
	DefaultOpenAIBaseURL     = "http://127.0.0.1:8000/v1"
	DefaultOpenAIModel       = "whisper-1"
	DefaultModelBaseURL      = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	DefaultInferenceTimeout  = 300 * time.Second

	// Tooling defaults
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"

	DefaultLogLevel    = "info"
	DefaultEnvironment = "development"
)

// Engine names
const (
	EngineWhisperCpp    = "whisper_cpp"
	EngineWhisperServer = "whisper_server"
	EngineOpenAI        = "openai"
)

// SupportedModels lists the Whisper model sizes accepted for whisper_model_name.
var SupportedModels = []string{"tiny", "base", "small", "medium", "large"}

// SupportedEngines lists the inference back ends that can host the model.
var SupportedEngines = []string{EngineWhisperCpp, EngineWhisperServer, EngineOpenAI}
