package eventbus

const (
	// Batch synthesis events
	EventBatchStarted    = "batch:started"
	EventLineSynthesized = "batch:line_synthesized"
	EventLineFailed      = "batch:line_failed"
	EventBatchCompleted  = "batch:completed"

	// Assembly events
	EventArtifactAssembled = "assembly:artifact_assembled"

	// Script generation events
	EventScriptGenerated = "script:generated"
)

type BatchEventData struct {
	SessionID string `json:"session_id"`
	Lines     int    `json:"lines"`
	Succeeded int    `json:"succeeded,omitempty"`
	Failed    int    `json:"failed,omitempty"`
}

type LineEventData struct {
	SessionID  string `json:"session_id"`
	LineNumber int    `json:"line_number"`
	Speaker    string `json:"speaker"`
	FilePath   string `json:"file_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ArtifactEventData struct {
	SessionID string  `json:"session_id"`
	FilePath  string  `json:"file_path"`
	Fragments int     `json:"fragments"`
	Duration  float64 `json:"duration_seconds,omitempty"`
}
