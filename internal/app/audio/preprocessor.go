package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "speite/internal/app/errors"
)

// Sample-rate bounds. Source files outside the load bounds are rejected before
// decoding; buffers outside the model bounds fail validation.
const (
	MinSourceSampleRate = 1000
	MaxSourceSampleRate = 384000
	MinModelSampleRate  = 8000
	MaxModelSampleRate  = 48000
)

// PreprocessorConfig holds the audio limits applied before inference.
type PreprocessorConfig struct {
	TargetSampleRate int
	MaxDuration      int // seconds
	Normalize        bool
}

// Preprocessor turns audio files into validated mono buffers at the model's sample rate.
type Preprocessor struct {
	config PreprocessorConfig
	ffmpeg *FFmpeg
	logger *zap.Logger
}

// NewPreprocessor creates a Preprocessor
func NewPreprocessor(config PreprocessorConfig, ffmpeg *FFmpeg, logger *zap.Logger) *Preprocessor {
	if ffmpeg == nil {
		ffmpeg = NewFFmpeg("", "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Audio preprocessor initialized", zap.Int("sample_rate", config.TargetSampleRate))
	return &Preprocessor{config: config, ffmpeg: ffmpeg, logger: logger}
}

// TargetSampleRate returns the rate every preprocessed buffer is delivered at.
func (p *Preprocessor) TargetSampleRate() int {
	return p.config.TargetSampleRate
}

// LoadAudio reads path into a mono buffer. Integer PCM WAV files are decoded
// in-process at their native rate; everything else goes through ffmpeg and
// arrives at the target rate.
func (p *Preprocessor) LoadAudio(ctx context.Context, path string) (Buffer, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Buffer{}, apperrors.Detail(apperrors.ErrFileNotFound, "Audio file not found: %s", path)
		}
		return Buffer{}, apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %v", err)
	}

	info, isWav, err := p.inspect(path)
	if err != nil {
		return Buffer{}, err
	}

	var buf Buffer
	if isWav && info.PCM {
		if info.SampleRate < MinSourceSampleRate || info.SampleRate > MaxSourceSampleRate {
			return Buffer{}, apperrors.Detail(apperrors.ErrUnsupportedSampleRate,
				"Sample rate %d Hz is outside the readable range [%d, %d]",
				info.SampleRate, MinSourceSampleRate, MaxSourceSampleRate)
		}
		buf, err = decodeWAV(path)
		if err != nil {
			return Buffer{}, apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %v", err)
		}
	} else {
		buf, err = p.convertAndDecode(ctx, path)
		if err != nil {
			return Buffer{}, err
		}
	}

	p.logger.Info("Loaded audio",
		zap.String("path", path),
		zap.Int("samples", len(buf.Samples)),
		zap.Int("sample_rate", buf.SampleRate))
	return buf, nil
}

func (p *Preprocessor) inspect(path string) (wavInfo, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return wavInfo{}, false, apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %v", err)
	}
	defer f.Close()

	info, ok := probeWAV(f)
	return info, ok, nil
}

func (p *Preprocessor) convertAndDecode(ctx context.Context, path string) (Buffer, error) {
	if !p.ffmpeg.Available() {
		return Buffer{}, apperrors.Detail(apperrors.ErrInvalidAudio,
			"Cannot load audio file: %s is not a PCM WAV and %s is not available", filepath.Base(path), p.ffmpeg.FFmpegPath)
	}

	if err := p.checkSource(ctx, path); err != nil {
		return Buffer{}, err
	}

	tmp, err := os.CreateTemp("", "speite-convert-*.wav")
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	p.logger.Debug("Converting audio with ffmpeg", zap.String("path", path))
	if err := p.ffmpeg.ConvertToWav(ctx, path, tmpPath, p.config.TargetSampleRate); err != nil {
		if ctx.Err() != nil {
			return Buffer{}, ctx.Err()
		}
		return Buffer{}, apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %v", err)
	}

	buf, err := decodeWAV(tmpPath)
	if err != nil {
		return Buffer{}, apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %v", err)
	}
	return buf, nil
}

// checkSource applies the readable-source bounds to a file ffmpeg is about to
// convert. Without ffprobe the check is skipped.
func (p *Preprocessor) checkSource(ctx context.Context, path string) error {
	if !p.ffmpeg.ProbeAvailable() {
		return nil
	}

	probeOutput, err := p.ffmpeg.Probe(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %v", err)
	}

	stream, ok := probeOutput.AudioStream()
	if !ok {
		return apperrors.Detail(apperrors.ErrInvalidAudio, "Cannot load audio file: %s has no audio stream", filepath.Base(path))
	}
	if stream.SampleRate < MinSourceSampleRate || stream.SampleRate > MaxSourceSampleRate {
		return apperrors.Detail(apperrors.ErrUnsupportedSampleRate,
			"Sample rate %d Hz is outside the readable range [%d, %d]",
			stream.SampleRate, MinSourceSampleRate, MaxSourceSampleRate)
	}

	p.logger.Debug("Probed source audio",
		zap.String("codec", stream.CodecName),
		zap.Int("sample_rate", stream.SampleRate),
		zap.Int("channels", stream.Channels))
	return nil
}

// ResampleAudio converts buf from fromRate to the target rate. Matching rates are a no-op.
func (p *Preprocessor) ResampleAudio(ctx context.Context, buf Buffer, fromRate int) (Buffer, error) {
	target := p.config.TargetSampleRate
	if buf.IsEmpty() {
		return Buffer{SampleRate: target}, nil
	}
	if fromRate == target {
		buf.SampleRate = target
		return buf, nil
	}

	p.logger.Info("Resampling audio", zap.Int("from", fromRate), zap.Int("to", target))

	dir, err := os.MkdirTemp("", "speite-resample-")
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "source.wav")
	dst := filepath.Join(dir, "resampled.wav")
	if err := SaveAudio(Buffer{Samples: buf.Samples, SampleRate: fromRate}, src); err != nil {
		return Buffer{}, err
	}
	if err := p.ffmpeg.ConvertToWav(ctx, src, dst, target); err != nil {
		return Buffer{}, fmt.Errorf("failed to resample audio: %w", err)
	}
	return decodeWAV(dst)
}

// ValidateAudio checks a preprocessed buffer against the configured limits.
func (p *Preprocessor) ValidateAudio(buf Buffer) error {
	if buf.IsEmpty() {
		return apperrors.Detail(apperrors.ErrEmptyAudio, "Audio data is empty")
	}

	if buf.SampleRate < MinModelSampleRate || buf.SampleRate > MaxModelSampleRate {
		return apperrors.Detail(apperrors.ErrUnsupportedSampleRate,
			"Sample rate %d Hz is outside the supported range [%d, %d]",
			buf.SampleRate, MinModelSampleRate, MaxModelSampleRate)
	}

	duration := buf.Duration()
	if duration > float64(p.config.MaxDuration) {
		return apperrors.Detail(apperrors.ErrAudioTooLong,
			"Audio duration (%.2fs) exceeds maximum allowed (%ds)", duration, p.config.MaxDuration)
	}

	if hasInvalidSamples(buf.Samples) {
		return apperrors.Detail(apperrors.ErrInvalidSamples, "Audio contains invalid values (NaN or Inf)")
	}

	p.logger.Info("Audio validation passed", zap.Float64("duration", duration))
	return nil
}

// Preprocess loads, resamples and validates path, normalizing the result when enabled.
func (p *Preprocessor) Preprocess(ctx context.Context, path string) (Buffer, error) {
	buf, err := p.LoadAudio(ctx, path)
	if err != nil {
		return Buffer{}, err
	}

	buf, err = p.ResampleAudio(ctx, buf, buf.SampleRate)
	if err != nil {
		return Buffer{}, err
	}

	if err := p.ValidateAudio(buf); err != nil {
		return Buffer{}, err
	}

	if p.config.Normalize {
		buf.Samples = Normalize(buf.Samples)
	}

	p.logger.Info("Audio preprocessing completed", zap.String("path", path))
	return buf, nil
}

// PreprocessBytes preprocesses an in-memory upload. filename only provides the
// extension used for the temporary file.
func (p *Preprocessor) PreprocessBytes(ctx context.Context, data []byte, filename string) (Buffer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".wav"
	}

	tmp, err := os.CreateTemp("", "speite-upload-*"+ext)
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Buffer{}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Buffer{}, fmt.Errorf("failed to write temp file: %w", err)
	}

	return p.Preprocess(ctx, tmpPath)
}
