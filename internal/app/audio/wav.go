package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	apperrors "speite/internal/app/errors"
)

const wavFormatPCM = 1

// wavInfo is the header of a WAV file.
type wavInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	PCM        bool
}

// probeWAV reads the WAV header of r. ok is false when r is not a WAV file.
func probeWAV(r io.ReadSeeker) (info wavInfo, ok bool) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return wavInfo{}, false
	}
	return wavInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		PCM:        d.WavAudioFormat == wavFormatPCM,
	}, true
}

// decodeWAV decodes an integer PCM WAV file into a mono buffer at its native rate.
func decodeWAV(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, apperrors.Wrapf(apperrors.ErrInvalidAudio, "open %s: %v", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Buffer{}, apperrors.Wrapf(apperrors.ErrInvalidAudio, "%s is not a valid WAV file", path)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return Buffer{}, apperrors.Wrapf(apperrors.ErrInvalidAudio, "decode %s: %v", path, err)
	}
	if pcm.Format == nil {
		return Buffer{}, apperrors.Wrapf(apperrors.ErrInvalidAudio, "decode %s: missing format", path)
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(d.BitDepth)
	}

	samples := intToFloat(pcm.Data, bitDepth)
	return Buffer{
		Samples:    MixToMono(samples, pcm.Format.NumChannels),
		SampleRate: pcm.Format.SampleRate,
	}, nil
}

// intToFloat scales signed integer samples of the given bit depth to [-1, 1].
// 8-bit WAV data is unsigned and is re-centred first.
func intToFloat(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	if bitDepth <= 0 {
		return out
	}
	scale := float32(int64(1) << uint(bitDepth-1))
	for i, v := range data {
		if bitDepth == 8 {
			v -= 128
		}
		out[i] = float32(v) / scale
	}
	return out
}

// SaveAudio writes buf to path as a 16-bit PCM mono WAV file.
func SaveAudio(buf Buffer, path string) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("cannot save audio with sample rate %d", buf.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, buf.SampleRate, 16, 1, wavFormatPCM)
	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = floatToInt16(s)
	}

	intBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(intBuf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return f.Close()
}

func floatToInt16(s float32) int {
	switch {
	case s >= 1:
		return 32767
	case s <= -1:
		return -32768
	default:
		return int(s * 32767)
	}
}
