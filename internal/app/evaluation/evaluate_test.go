package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		wer        float64
		cer        float64
	}{
		{"identical", "hello world", "hello world", 0, 0},
		{"case and punctuation ignored", "Hello, World!", "hello world", 0, 0},
		{"one substitution", "the cat sat", "the bat sat", 1.0 / 3.0, 1.0 / 9.0},
		{"one deletion", "the cat sat down", "the cat down", 0.25, 3.0 / 13.0},
		{"empty hypothesis", "one two", "", 1, 1},
		{"insertions exceed one", "hi", "oh hi you", 2, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := Evaluate(tt.reference, tt.hypothesis)
			require.NotNil(t, scores.WER)
			require.NotNil(t, scores.CER)
			assert.InDelta(t, tt.wer, *scores.WER, 1e-9)
			assert.InDelta(t, tt.cer, *scores.CER, 1e-9)
		})
	}
}

func TestEvaluateEmptyReference(t *testing.T) {
	scores := Evaluate("  ...  ", "anything")
	assert.Nil(t, scores.WER)
	assert.Nil(t, scores.CER)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "don't stop me now", Normalize("  Don't   STOP-me, now!! "))
	assert.Equal(t, "rock n roll", Normalize("rock 'n' roll"))
	assert.Equal(t, "", Normalize("?!"))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 3, distance([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, distance([]string{}, []string{}))
	assert.Equal(t, 2, distance([]string{"a", "b"}, nil))
}
