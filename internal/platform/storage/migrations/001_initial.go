package migrations

import (
	"gorm.io/gorm"
)

// Migration001Initial creates the core tables.
type Migration001Initial struct{}

func (m *Migration001Initial) Version() string {
	return "001_initial"
}

func (m *Migration001Initial) Description() string {
	return "Create sessions, speaker profiles and generation records"
}

func (m *Migration001Initial) Up(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id VARCHAR(64) NOT NULL UNIQUE,
			platform VARCHAR(32),
			group_name VARCHAR(255),
			main_user VARCHAR(255),
			status VARCHAR(32),
			total_messages INTEGER,
			raw_content TEXT,
			summary TEXT,
			artifact_path VARCHAR(512),
			artifact_duration REAL,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS speaker_profile_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id VARCHAR(64) NOT NULL,
			speaker VARCHAR(255) NOT NULL,
			personality_traits JSON,
			communication_style JSON,
			relationship_type VARCHAR(32),
			trust_score REAL,
			voice_id VARCHAR(64),
			created_at DATETIME
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS generation_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id VARCHAR(64) NOT NULL,
			line_number INTEGER NOT NULL,
			speaker VARCHAR(255),
			text TEXT,
			success BOOLEAN,
			file_path VARCHAR(512),
			file_size_bytes INTEGER,
			voice_config JSON,
			emotion JSON,
			error_message TEXT,
			created_at DATETIME
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_main_user ON sessions(main_user)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_profiles_session_id ON speaker_profile_records(session_id)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_generations_session_id ON generation_records(session_id)`).Error; err != nil {
		return err
	}

	return nil
}

func (m *Migration001Initial) Down(db *gorm.DB) error {
	if err := db.Exec(`DROP TABLE IF EXISTS generation_records`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP TABLE IF EXISTS speaker_profile_records`).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP TABLE IF EXISTS sessions`).Error; err != nil {
		return err
	}
	return nil
}
