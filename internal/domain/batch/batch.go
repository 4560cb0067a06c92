package batch

import (
	"strings"

	"voicecast-server-go/internal/domain/emotion"
	"voicecast-server-go/internal/domain/voice"
)

// ScriptLine is one line of the conversation script to voice.
type ScriptLine struct {
	Speaker    string `json:"speaker"`
	Text       string `json:"text"`
	LineNumber int    `json:"line_number"`
}

// GenerationResult is the outcome of attempting to synthesize one line.
// Exactly one result exists per input line, in the same relative order.
type GenerationResult struct {
	LineNumber int    `json:"line_number"`
	Speaker    string `json:"speaker"`
	Success    bool   `json:"success"`

	FilePath        string              `json:"file_path,omitempty"`
	FileSizeBytes   int64               `json:"file_size_bytes,omitempty"`
	EstimatedLength float64             `json:"estimated_length_seconds,omitempty"`
	VoiceConfig     voice.Configuration `json:"voice_config,omitempty"`
	Emotion         emotion.Signal      `json:"emotion,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// speechWordsPerMinute is the pace assumed when estimating spoken length
// without decoding the audio.
const speechWordsPerMinute = 150.0

// EstimateSpokenLength returns the estimated spoken duration of text in
// seconds.
func EstimateSpokenLength(text string) float64 {
	words := len(strings.Fields(text))
	return float64(words) / speechWordsPerMinute * 60.0
}
