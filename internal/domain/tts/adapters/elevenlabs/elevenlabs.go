package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicecast-server-go/internal/domain/tts"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

func init() {
	tts.Register("elevenlabs", func(cfg *config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
		if cfg.APIKey == "" || cfg.APIKey == "your_api_key" {
			return nil, fmt.Errorf("elevenlabs API key required (set ELEVENLABS_API_KEY)")
		}
		return New(cfg, logger), nil
	})
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type voicesResponse struct {
	Voices []struct {
		VoiceID string `json:"voice_id"`
		Name    string `json:"name"`
		Labels  struct {
			Gender string `json:"gender"`
		} `json:"labels"`
	} `json:"voices"`
}

// Provider speaks the ElevenLabs REST API.
type Provider struct {
	apiKey  string
	baseURL string
	modelID string
	client  *http.Client
	logger  *logging.Logger
}

func New(cfg *config.TTSConfig, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_monolingual_v1"
	}
	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		modelID: modelID,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// Synthesize posts one line of text and returns the mp3 bytes.
func (p *Provider) Synthesize(ctx context.Context, text string, cfg voice.Configuration) ([]byte, error) {
	if cfg.VoiceID == "" {
		return nil, errors.New(errors.KindSynthesis, "elevenlabs.synthesize", "voice id is empty")
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: p.modelID,
		VoiceSettings: voiceSettings{
			Stability:       cfg.Stability,
			SimilarityBoost: cfg.SimilarityBoost,
			Style:           cfg.Style,
			UseSpeakerBoost: cfg.SpeakerBoost,
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.synthesize", "failed to encode request", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", p.baseURL, cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.synthesize", "failed to build request", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.synthesize", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.New(errors.KindSynthesis, "elevenlabs.synthesize",
			fmt.Sprintf("backend returned %d: %s", resp.StatusCode, detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.synthesize", "failed to read audio", err)
	}
	if len(audio) == 0 {
		return nil, errors.New(errors.KindSynthesis, "elevenlabs.synthesize", "backend returned empty audio")
	}

	p.logger.DebugTag("TTS", "synthesized %d bytes with voice %s", len(audio), cfg.VoiceID)
	return audio, nil
}

// Voices fetches the account voice list.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/voices", nil)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.voices", "failed to build request", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.voices", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.KindSynthesis, "elevenlabs.voices",
			fmt.Sprintf("backend returned %d", resp.StatusCode))
	}

	var decoded voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "elevenlabs.voices", "failed to decode response", err)
	}

	voices := make([]tts.Voice, len(decoded.Voices))
	for i, v := range decoded.Voices {
		voices[i] = tts.Voice{
			ID:     v.VoiceID,
			Name:   v.Name,
			Gender: v.Labels.Gender,
		}
	}
	return voices, nil
}

func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
