package model

import "strings"

// Segment is a time-stamped portion of a transcript. Times are in seconds.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the outcome of one transcription. It is never mutated after creation.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration,omitempty"`
}

// HasSegments reports whether the result carries timestamps.
func (r *Result) HasSegments() bool {
	return len(r.Segments) > 0
}

// ModelInfo describes the single model handle held by the process.
type ModelInfo struct {
	ModelName string `json:"model_name"`
	Engine    string `json:"engine"`
	Device    string `json:"device"`
	Language  string `json:"language"`
	Loaded    bool   `json:"loaded"`
}

// JoinSegments concatenates segment texts into one transcript.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
