package storage

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/errors"
)

// ProfileRepository persists speaker profiles per session.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// SaveProfiles replaces a session's stored profiles.
func (r *ProfileRepository) SaveProfiles(ctx context.Context, sessionID string, profiles map[string]*voice.Profile) error {
	models := make([]SpeakerProfileRecord, 0, len(profiles))
	for speaker, profile := range profiles {
		models = append(models, toProfileModel(sessionID, speaker, profile))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&SpeakerProfileRecord{}).Error; err != nil {
			return errors.Wrap(errors.KindStorage, "profile.clear", "failed to clear old profiles", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return errors.Wrap(errors.KindStorage, "profile.save", "failed to save profiles", err)
		}
		return nil
	})
}

// FindBySession rebuilds the speaker-to-profile mapping for a session.
func (r *ProfileRepository) FindBySession(ctx context.Context, sessionID string) (map[string]*voice.Profile, error) {
	var models []SpeakerProfileRecord
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&models).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "profile.find", "failed to find profiles", err)
	}

	profiles := make(map[string]*voice.Profile, len(models))
	for _, model := range models {
		profiles[model.Speaker] = fromProfileModel(model)
	}
	return profiles, nil
}

// SetVoiceOverride assigns a manual voice to one speaker of a session.
func (r *ProfileRepository) SetVoiceOverride(ctx context.Context, sessionID, speaker, voiceID string) error {
	result := r.db.WithContext(ctx).Model(&SpeakerProfileRecord{}).
		Where("session_id = ? AND speaker = ?", sessionID, speaker).
		Update("voice_id", voiceID)
	if result.Error != nil {
		return errors.Wrap(errors.KindStorage, "profile.set_voice", "failed to set voice override", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.KindStorage, "profile.set_voice", "speaker profile not found")
	}
	return nil
}

func toProfileModel(sessionID, speaker string, profile *voice.Profile) SpeakerProfileRecord {
	traits, _ := json.Marshal(profile.PersonalityTraits)
	styles, _ := json.Marshal(profile.CommunicationStyle)

	return SpeakerProfileRecord{
		SessionID:          sessionID,
		Speaker:            speaker,
		PersonalityTraits:  datatypes.JSON(traits),
		CommunicationStyle: datatypes.JSON(styles),
		RelationshipType:   profile.RelationshipType,
		TrustScore:         profile.TrustScore,
		VoiceID:            profile.VoiceID,
	}
}

func fromProfileModel(model SpeakerProfileRecord) *voice.Profile {
	profile := &voice.Profile{
		Speaker:          model.Speaker,
		RelationshipType: model.RelationshipType,
		TrustScore:       model.TrustScore,
		VoiceID:          model.VoiceID,
	}
	json.Unmarshal(model.PersonalityTraits, &profile.PersonalityTraits)
	json.Unmarshal(model.CommunicationStyle, &profile.CommunicationStyle)
	return profile
}
