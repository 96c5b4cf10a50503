package evaluate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speite/internal/app/evaluation"
)

func TestPrintScores(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printScores(&out, evaluation.Evaluate("the cat sat", "the cat sit"), false))
	assert.Contains(t, out.String(), "WER: 33.33%\n")

	out.Reset()
	require.NoError(t, printScores(&out, evaluation.Evaluate("", "anything"), false))
	assert.Equal(t, "WER: n/a (empty reference)\nCER: n/a (empty reference)\n", out.String())
}

func TestPrintScoresJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printScores(&out, evaluation.Evaluate("a b", "a b"), true))
	assert.JSONEq(t, `{"wer": 0, "cer": 0}`, out.String())
}
