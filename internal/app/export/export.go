package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/tealeg/xlsx"

	"speite/internal/app/model"
)

// Format is an output rendering of a transcription result
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format name
var Formats = []string{string(FormatText), string(FormatJSON), string(FormatSRT), string(FormatVTT), string(FormatXLSX)}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatText, nil
	}
	if name == "txt" {
		return FormatText, nil
	}
	if !lo.Contains(Formats, name) {
		return "", fmt.Errorf("unsupported format %q (must be one of %s)", name, strings.Join(Formats, ", "))
	}
	return Format(name), nil
}

// Extension returns the file extension for the format, with the leading dot
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// IsBinary reports whether the format can only be written to a file
func (f Format) IsBinary() bool {
	return f == FormatXLSX
}

// Render writes result to w. Timestamps only affect the text format; subtitle
// formats always carry them.
func Render(w io.Writer, result *model.Result, format Format, timestamps bool) error {
	var out string
	switch format {
	case FormatText, "":
		out = Text(result, timestamps) + "\n"
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	case FormatSRT:
		out = SRT(result)
	case FormatVTT:
		out = VTT(result)
	case FormatXLSX:
		return fmt.Errorf("%s output requires a file path", format)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	_, err := io.WriteString(w, out)
	return err
}

// WriteFile renders result into path
func WriteFile(path string, result *model.Result, format Format, timestamps bool) error {
	if format == FormatXLSX {
		return ToExcel(result, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Render(f, result, format, timestamps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Text renders the transcript, one "[start - end] text" line per segment when
// timestamps are requested and present.
func Text(result *model.Result, timestamps bool) string {
	if !timestamps || !result.HasSegments() {
		return result.Text
	}

	lines := make([]string, 0, len(result.Segments))
	for _, seg := range result.Segments {
		lines = append(lines, fmt.Sprintf("[%.2fs - %.2fs] %s", seg.Start, seg.End, strings.TrimSpace(seg.Text)))
	}
	return strings.Join(lines, "\n")
}

// SRT renders SubRip subtitles
func SRT(result *model.Result) string {
	var b strings.Builder
	for i, seg := range cues(result) {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, timestamp(seg.Start, ","), timestamp(seg.End, ","), strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// VTT renders WebVTT subtitles
func VTT(result *model.Result) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range cues(result) {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			timestamp(seg.Start, "."), timestamp(seg.End, "."), strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// cues falls back to a single cue spanning the audio when there are no segments.
func cues(result *model.Result) []model.Segment {
	if result.HasSegments() {
		return result.Segments
	}
	if result.Text == "" {
		return nil
	}
	return []model.Segment{{Start: 0, End: result.Duration, Text: result.Text}}
}

func timestamp(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms%1000)
}

// ToExcel writes a workbook with a Segments sheet and a Summary sheet
func ToExcel(result *model.Result, outputFilePath string) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Segments")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "#"
	headerRow.AddCell().Value = "Start"
	headerRow.AddCell().Value = "End"
	headerRow.AddCell().Value = "Text"

	for i, seg := range cues(result) {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().Value = fmt.Sprintf("%.2f", seg.Start)
		row.AddCell().Value = fmt.Sprintf("%.2f", seg.End)
		row.AddCell().Value = strings.TrimSpace(seg.Text)
	}

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return err
	}
	for _, kv := range [][2]string{
		{"Language", result.Language},
		{"Audio Duration", fmt.Sprintf("%.2f", result.Duration)},
		{"Transcription", result.Text},
	} {
		row := summary.AddRow()
		row.AddCell().Value = kv[0]
		row.AddCell().Value = kv[1]
	}

	return file.Save(outputFilePath)
}
