package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Log      LogConfig            `yaml:"log"`
	Audio    AudioConfig          `yaml:"audio"`
	Database DatabaseConfig       `yaml:"database"`
	Batch    BatchConfig          `yaml:"batch"`
	Cache    CacheConfig          `yaml:"cache"`
	Speakers SpeakerConfig        `yaml:"speakers"`
	TTS      map[string]TTSConfig `yaml:"TTS"`
	LLM      LLMConfig            `yaml:"LLM"`
	Selected SelectedConfig       `yaml:"selected_module"`
}

type ServerConfig struct {
	IP        string `yaml:"ip"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// AudioConfig controls where fragments and assembled artifacts are written.
type AudioConfig struct {
	OutputDir   string `yaml:"output_dir"`
	Format      string `yaml:"format"`
	DeleteAudio bool   `yaml:"delete_audio"`
}

// DatabaseConfig locates the sqlite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BatchConfig bounds the synthesis fan-out.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig configures the optional redis-backed fragment cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Username string        `yaml:"username,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl"`
}

// UnmarshalYAML accepts go duration strings for the ttl field and overlays
// onto whatever values the struct already holds.
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Enabled  *bool   `yaml:"enabled"`
		Addr     *string `yaml:"addr"`
		Username *string `yaml:"username"`
		Password *string `yaml:"password"`
		DB       *int    `yaml:"db"`
		Prefix   *string `yaml:"prefix"`
		TTL      *string `yaml:"ttl"`
	}{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Enabled != nil {
		c.Enabled = *raw.Enabled
	}
	if raw.Addr != nil {
		c.Addr = *raw.Addr
	}
	if raw.Username != nil {
		c.Username = *raw.Username
	}
	if raw.Password != nil {
		c.Password = *raw.Password
	}
	if raw.DB != nil {
		c.DB = *raw.DB
	}
	if raw.Prefix != nil {
		c.Prefix = *raw.Prefix
	}
	if raw.TTL != nil {
		ttl, err := time.ParseDuration(*raw.TTL)
		if err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", *raw.TTL, err)
		}
		c.TTL = ttl
	}
	return nil
}

// SpeakerConfig is the static speaker-to-voice table plus the narrator fallback.
type SpeakerConfig struct {
	NarratorVoice string            `yaml:"narrator_voice"`
	Voices        map[string]string `yaml:"voices"`
}

type TTSConfig struct {
	Type    string `yaml:"type"`
	Voice   string `yaml:"voice"`
	Format  string `yaml:"format"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"url"`
	ModelID string `yaml:"model_id"`
}

type LLMConfig struct {
	Type        string  `yaml:"type"`
	ModelName   string  `yaml:"model_name"`
	BaseURL     string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type SelectedConfig struct {
	TTS string `yaml:"TTS"`
	LLM string `yaml:"LLM"`
}
