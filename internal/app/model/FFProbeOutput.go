package model

type FFProbeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		FormatName string  `json:"format_name"`
		Duration   float64 `json:"duration,string"`
	} `json:"format"`
}

// AudioStreamInfo is the first audio stream reported by ffprobe.
type AudioStreamInfo struct {
	CodecName  string
	SampleRate int
	Channels   int
	Duration   float64
}

// AudioStream returns the first audio stream, or false when the file has none.
func (o *FFProbeOutput) AudioStream() (AudioStreamInfo, bool) {
	for _, s := range o.Streams {
		if s.CodecType == "audio" {
			return AudioStreamInfo{
				CodecName:  s.CodecName,
				SampleRate: s.SampleRate,
				Channels:   s.Channels,
				Duration:   o.Format.Duration,
			}, true
		}
	}
	return AudioStreamInfo{}, false
}
