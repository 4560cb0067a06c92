package storage

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voicecast-server-go/internal/domain/batch"
	"voicecast-server-go/internal/domain/emotion"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/errors"
)

// GenerationRepository persists per-line synthesis outcomes.
type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// SaveResults replaces any previous records for the session with the given
// batch outcome, so a regeneration does not accumulate stale rows.
func (r *GenerationRepository) SaveResults(ctx context.Context, sessionID string, lines []batch.ScriptLine, results []batch.GenerationResult) error {
	textByLine := make(map[int]string, len(lines))
	for _, line := range lines {
		textByLine[line.LineNumber] = line.Text
	}

	models := make([]GenerationRecord, len(results))
	for i, result := range results {
		models[i] = toGenerationModel(sessionID, textByLine[result.LineNumber], result)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&GenerationRecord{}).Error; err != nil {
			return errors.Wrap(errors.KindStorage, "generation.clear", "failed to clear old records", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return errors.Wrap(errors.KindStorage, "generation.save", "failed to save generation records", err)
		}
		return nil
	})
}

// FindBySession returns a session's records in line order.
func (r *GenerationRepository) FindBySession(ctx context.Context, sessionID string) ([]batch.GenerationResult, error) {
	var models []GenerationRecord
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("line_number ASC").
		Find(&models).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "generation.find", "failed to find generation records", err)
	}

	results := make([]batch.GenerationResult, len(models))
	for i, model := range models {
		results[i] = fromGenerationModel(model)
	}
	return results, nil
}

func toGenerationModel(sessionID, text string, result batch.GenerationResult) GenerationRecord {
	voiceConfig, _ := json.Marshal(result.VoiceConfig)
	signal, _ := json.Marshal(result.Emotion)

	return GenerationRecord{
		SessionID:     sessionID,
		LineNumber:    result.LineNumber,
		Speaker:       result.Speaker,
		Text:          text,
		Success:       result.Success,
		FilePath:      result.FilePath,
		FileSizeBytes: result.FileSizeBytes,
		VoiceConfig:   datatypes.JSON(voiceConfig),
		Emotion:       datatypes.JSON(signal),
		ErrorMessage:  result.ErrorMessage,
	}
}

func fromGenerationModel(model GenerationRecord) batch.GenerationResult {
	result := batch.GenerationResult{
		LineNumber:    model.LineNumber,
		Speaker:       model.Speaker,
		Success:       model.Success,
		FilePath:      model.FilePath,
		FileSizeBytes: model.FileSizeBytes,
		ErrorMessage:  model.ErrorMessage,
	}

	var cfg voice.Configuration
	if err := json.Unmarshal(model.VoiceConfig, &cfg); err == nil {
		result.VoiceConfig = cfg
	}
	var signal emotion.Signal
	if err := json.Unmarshal(model.Emotion, &signal); err == nil {
		result.Emotion = signal
	}
	return result
}
