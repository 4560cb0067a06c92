package storage

import (
	"time"

	"gorm.io/datatypes"
)

// Session statuses, in pipeline order.
const (
	StatusUploaded     = "uploaded"
	StatusScripted     = "scripted"
	StatusSynthesizing = "synthesizing"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
)

// Session is one imported conversation and its synthesis lifecycle.
type Session struct {
	ID               uint      `gorm:"primaryKey"`
	SessionID        string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	Platform         string    `gorm:"type:varchar(32)"                      json:"platform"`
	GroupName        string    `                                             json:"group_name"`
	MainUser         string    `gorm:"index"                                 json:"main_user"`
	Status           string    `gorm:"type:varchar(32);index"                json:"status"`
	TotalMessages    int       `                                             json:"total_messages"`
	RawContent       string    `gorm:"type:text"                             json:"-"`
	Summary          string    `gorm:"type:text"                             json:"summary,omitempty"`
	ArtifactPath     string    `                                             json:"artifact_path,omitempty"`
	ArtifactDuration float64   `                                             json:"artifact_duration,omitempty"`
	CreatedAt        time.Time `                                             json:"created_at"`
	UpdatedAt        time.Time `                                             json:"updated_at"`
}

// SpeakerProfileRecord stores the learned profile for one participant of a
// session.
type SpeakerProfileRecord struct {
	ID                 uint           `gorm:"primaryKey"`
	SessionID          string         `gorm:"index;not null"     json:"session_id"`
	Speaker            string         `gorm:"not null"           json:"speaker"`
	PersonalityTraits  datatypes.JSON `                          json:"personality_traits,omitempty"`
	CommunicationStyle datatypes.JSON `                          json:"communication_style,omitempty"`
	RelationshipType   string         `gorm:"type:varchar(32)"   json:"relationship_type"`
	TrustScore         float64        `                          json:"trust_score"`
	VoiceID            string         `                          json:"voice_id,omitempty"`
	CreatedAt          time.Time      `                          json:"created_at"`
}

// GenerationRecord is the persisted per-line synthesis outcome.
type GenerationRecord struct {
	ID            uint           `gorm:"primaryKey"`
	SessionID     string         `gorm:"index;not null" json:"session_id"`
	LineNumber    int            `gorm:"not null"       json:"line_number"`
	Speaker       string         `                      json:"speaker"`
	Text          string         `gorm:"type:text"      json:"text,omitempty"`
	Success       bool           `                      json:"success"`
	FilePath      string         `                      json:"file_path,omitempty"`
	FileSizeBytes int64          `                      json:"file_size_bytes,omitempty"`
	VoiceConfig   datatypes.JSON `                      json:"voice_config,omitempty"`
	Emotion       datatypes.JSON `                      json:"emotion,omitempty"`
	ErrorMessage  string         `                      json:"error_message,omitempty"`
	CreatedAt     time.Time      `                      json:"created_at"`
}
