package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "speite/internal/app/errors"
)

func TestSaveAndDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	in := Buffer{Samples: []float32{0, 0.5, -0.5, 0.999, -1}, SampleRate: 16000}

	require.NoError(t, SaveAudio(in, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	info, ok := probeWAV(f)
	f.Close()
	require.True(t, ok)
	assert.Equal(t, wavInfo{SampleRate: 16000, Channels: 1, BitDepth: 16, PCM: true}, info)

	out, err := decodeWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, out.SampleRate)
	assert.InDeltaSlice(t, in.Samples, out.Samples, 1e-3)
}

func TestSaveAudioRejectsZeroRate(t *testing.T) {
	err := SaveAudio(Buffer{Samples: []float32{0}}, filepath.Join(t.TempDir(), "x.wav"))
	assert.Error(t, err)
}

func TestDecodeStereoWAVMixesDown(t *testing.T) {
	path := writeSineWAV(t, "stereo.wav", 16000, 2, 0.5, 0.5)

	buf, err := decodeWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, buf.SampleRate)
	assert.Len(t, buf.Samples, 8000)
}

func TestDecodeWAVInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff data"), 0o644))

	_, err := decodeWAV(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidAudio))
}

func TestIntToFloat(t *testing.T) {
	assert.InDeltaSlice(t, []float32{0.5, -1}, intToFloat([]int{16384, -32768}, 16), 1e-6)
	assert.InDeltaSlice(t, []float32{0, -1, 0.5}, intToFloat([]int{128, 0, 192}, 8), 1e-6)
	assert.Equal(t, []float32{0}, intToFloat([]int{5}, 0))
}
