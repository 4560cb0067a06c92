package storage

import (
	"context"

	"gorm.io/gorm"

	"voicecast-server-go/internal/platform/errors"
)

// SessionRepository persists conversation sessions.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Save(ctx context.Context, session *Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "session.save", "failed to save session", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *Session) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "session.update", "failed to update session", err)
	}
	return nil
}

// UpdateStatus moves a session through its lifecycle.
func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID, status string) error {
	result := r.db.WithContext(ctx).Model(&Session{}).
		Where("session_id = ?", sessionID).
		Update("status", status)
	if result.Error != nil {
		return errors.Wrap(errors.KindStorage, "session.update_status", "failed to update status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.KindStorage, "session.update_status", "session not found")
	}
	return nil
}

// SetArtifact records the assembled artifact on a completed session.
func (r *SessionRepository) SetArtifact(ctx context.Context, sessionID, path string, duration float64) error {
	result := r.db.WithContext(ctx).Model(&Session{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"artifact_path":     path,
			"artifact_duration": duration,
			"status":            StatusCompleted,
		})
	if result.Error != nil {
		return errors.Wrap(errors.KindStorage, "session.set_artifact", "failed to record artifact", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.KindStorage, "session.set_artifact", "session not found")
	}
	return nil
}

// FindBySessionID returns nil when the session does not exist.
func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "session.find", "failed to find session", err)
	}
	return &session, nil
}

// List returns sessions newest first, optionally filtered by main user.
func (r *SessionRepository) List(ctx context.Context, mainUser string) ([]Session, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if mainUser != "" {
		query = query.Where("main_user = ?", mainUser)
	}

	var sessions []Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "session.list", "failed to list sessions", err)
	}
	return sessions, nil
}
