package testutil

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"speite/internal/app/audio"
	"speite/internal/app/model"
)

// SampleRate is the rate fixtures are generated at
const SampleRate = 16000

// SineBuffer returns seconds of a mono sine tone at freq Hz with amplitude 0.5
func SineBuffer(seconds, freq float64) audio.Buffer {
	n := int(seconds * SampleRate)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return audio.Buffer{Samples: samples, SampleRate: SampleRate}
}

// SilentBuffer returns seconds of silence
func SilentBuffer(seconds float64) audio.Buffer {
	return audio.Buffer{Samples: make([]float32, int(seconds*SampleRate)), SampleRate: SampleRate}
}

// WriteWAV saves buf as a 16-bit PCM WAV named name in a temp dir
func WriteWAV(t *testing.T, buf audio.Buffer, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, audio.SaveAudio(buf, path))
	return path
}

// SampleResult is a two-segment transcription
func SampleResult() *model.Result {
	return &model.Result{
		Text:     "Hello world. This is a test.",
		Language: "en",
		Duration: 3,
		Segments: []model.Segment{
			{ID: 0, Start: 0, End: 1.5, Text: "Hello world."},
			{ID: 1, Start: 1.5, End: 3, Text: "This is a test."},
		},
	}
}
