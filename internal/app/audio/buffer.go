package audio

import (
	"math"
	"time"
)

// Buffer is a mono waveform in the range [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length of the buffer in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Length returns the buffer duration as a time.Duration.
func (b Buffer) Length() time.Duration {
	return time.Duration(b.Duration() * float64(time.Second))
}

// IsEmpty reports whether the buffer holds no samples.
func (b Buffer) IsEmpty() bool {
	return len(b.Samples) == 0
}

// MixToMono averages interleaved frames of channels samples into one channel.
// A trailing partial frame is dropped.
func MixToMono(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}

// Normalize scales samples so the peak magnitude is just under 1.
func Normalize(samples []float32) []float32 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) / (peak + 1e-9))
	}
	return out
}

// hasInvalidSamples reports whether any sample is NaN or infinite.
func hasInvalidSamples(samples []float32) bool {
	for _, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}
