package tts

import (
	"context"
	"fmt"

	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/logging"
)

// Voice describes one selectable backend voice.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Description string `json:"description,omitempty"`
}

// Provider is the synthesis backend boundary. Any non-success response is a
// per-line failure from the batch's point of view, the provider owns text
// validation, auth and rate limiting.
type Provider interface {
	Synthesize(ctx context.Context, text string, cfg voice.Configuration) ([]byte, error)
	Voices(ctx context.Context) ([]Voice, error)
	Close() error
}

// Factory builds a provider from its config section.
type Factory func(cfg *config.TTSConfig, logger *logging.Logger) (Provider, error)

var factories = make(map[string]Factory)

// Register registers a provider factory under a type name.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Create instantiates the provider registered under cfg.Type.
func Create(cfg *config.TTSConfig, logger *logging.Logger) (Provider, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown TTS provider: %s", cfg.Type)
	}

	provider, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS provider %s: %w", cfg.Type, err)
	}
	return provider, nil
}
