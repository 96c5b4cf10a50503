package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"speite/internal/app/model"
)

// FFmpeg runs the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpeg returns an FFmpeg using the given binaries, falling back to PATH lookups.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Available reports whether the ffmpeg binary can be found.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.FFmpegPath)
	return err == nil
}

// ProbeAvailable reports whether the ffprobe binary can be found.
func (f *FFmpeg) ProbeAvailable() bool {
	_, err := exec.LookPath(f.FFprobePath)
	return err == nil
}

// Probe returns the ffprobe description of path.
func (f *FFmpeg) Probe(ctx context.Context, path string) (*model.FFProbeOutput, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("FFprobe error: %v, stderr: %s", err, stderr.String())
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &probeOutput, nil
}

// ConvertToWav converts any audio or video container into a mono 16-bit PCM WAV at sampleRate.
func (f *FFmpeg) ConvertToWav(ctx context.Context, inputPath, outputPath string, sampleRate int) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		outputPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, stderr.String())
	}
	return nil
}
