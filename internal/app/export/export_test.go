package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"speite/internal/app/model"
)

func sampleResult() *model.Result {
	return &model.Result{
		Text:     "Hello world. Second line.",
		Language: "en",
		Duration: 3725.5,
		Segments: []model.Segment{
			{ID: 0, Start: 0, End: 1.5, Text: " Hello world."},
			{ID: 1, Start: 3723.25, End: 3725.5, Text: " Second line. "},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"": FormatText, "txt": FormatText, "JSON": FormatJSON, "srt": FormatSRT, "vtt": FormatVTT, "xlsx": FormatXLSX} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("docx")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".txt", FormatText.Extension())
	assert.Equal(t, ".srt", FormatSRT.Extension())
	assert.True(t, FormatXLSX.IsBinary())
	assert.False(t, FormatJSON.IsBinary())
}

func TestText(t *testing.T) {
	result := sampleResult()

	assert.Equal(t, "Hello world. Second line.", Text(result, false))
	assert.Equal(t, "[0.00s - 1.50s] Hello world.\n[3723.25s - 3725.50s] Second line.", Text(result, true))

	noSegments := &model.Result{Text: "plain"}
	assert.Equal(t, "plain", Text(noSegments, true))
}

func TestSRT(t *testing.T) {
	expected := "1\n00:00:00,000 --> 00:00:01,500\nHello world.\n\n" +
		"2\n01:02:03,250 --> 01:02:05,500\nSecond line.\n\n"
	assert.Equal(t, expected, SRT(sampleResult()))
}

func TestVTT(t *testing.T) {
	out := VTT(sampleResult())
	assert.Contains(t, out, "WEBVTT\n\n")
	assert.Contains(t, out, "01:02:03.250 --> 01:02:05.500\nSecond line.")
}

func TestSubtitlesWithoutSegments(t *testing.T) {
	result := &model.Result{Text: "only text", Duration: 2}
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:02,000\nonly text\n\n", SRT(result))
	assert.Equal(t, "", SRT(&model.Result{}))
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatJSON, false))

	var decoded model.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "en", decoded.Language)
	assert.Len(t, decoded.Segments, 2)
}

func TestRenderXLSXNeedsFile(t *testing.T) {
	err := Render(&bytes.Buffer{}, sampleResult(), FormatXLSX, false)
	assert.ErrorContains(t, err, "requires a file path")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteFile(path, sampleResult(), FormatText, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[0.00s - 1.50s] Hello world.\n[3723.25s - 3725.50s] Second line.\n", string(data))
}

func TestToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(path, sampleResult(), FormatXLSX, false))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 2)

	segments := file.Sheet["Segments"]
	require.NotNil(t, segments)
	require.Len(t, segments.Rows, 3)
	assert.Equal(t, "Text", segments.Rows[0].Cells[3].Value)
	assert.Equal(t, "Second line.", segments.Rows[2].Cells[3].Value)
	assert.Equal(t, "3723.25", segments.Rows[2].Cells[1].Value)

	summary := file.Sheet["Summary"]
	require.NotNil(t, summary)
	assert.Equal(t, "Hello world. Second line.", summary.Rows[2].Cells[1].Value)
}
