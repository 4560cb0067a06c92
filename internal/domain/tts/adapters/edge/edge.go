package edge

import (
	"context"
	"strings"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"voicecast-server-go/internal/domain/tts"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
)

func init() {
	tts.Register("edge", func(cfg *config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
		return New(cfg, logger), nil
	})
}

// Provider synthesizes through the free Edge neural voices. It needs no API
// key, which makes it the fallback backend for keyless deployments. Edge has
// no stability/similarity controls, so the resolved numeric parameters only
// affect voice selection here.
type Provider struct {
	voice  string
	logger *logging.Logger
}

func New(cfg *config.TTSConfig, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	v := cfg.Voice
	if v == "" {
		v = "en-US-AriaNeural"
	}
	return &Provider{voice: v, logger: logger}
}

func (p *Provider) Synthesize(ctx context.Context, text string, cfg voice.Configuration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Edge voice names look like "en-US-AriaNeural". A resolver-supplied
	// voice id in that shape wins over the configured default.
	voiceName := p.voice
	if looksLikeEdgeVoice(cfg.VoiceID) {
		voiceName = cfg.VoiceID
	}

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voiceName))
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "edge.synthesize", "failed to create communicator", err)
	}

	audio, err := communicate.Stream()
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "edge.synthesize", "synthesis failed", err)
	}
	if len(audio) == 0 {
		return nil, errors.New(errors.KindSynthesis, "edge.synthesize", "backend returned empty audio")
	}

	p.logger.DebugTag("TTS", "edge synthesized %d bytes with voice %s", len(audio), voiceName)
	return audio, nil
}

func (p *Provider) Voices(_ context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "en-US-AriaNeural", Name: "Aria", Language: "en-US", Gender: "Female"},
		{ID: "en-US-GuyNeural", Name: "Guy", Language: "en-US", Gender: "Male"},
		{ID: "en-GB-SoniaNeural", Name: "Sonia", Language: "en-GB", Gender: "Female"},
		{ID: "en-AU-NatashaNeural", Name: "Natasha", Language: "en-AU", Gender: "Female"},
	}, nil
}

func (p *Provider) Close() error {
	return nil
}

// looksLikeEdgeVoice matches the locale-prefixed neural voice naming, e.g.
// "en-US-AriaNeural".
func looksLikeEdgeVoice(id string) bool {
	return len(id) >= 6 && id[2] == '-' && id[5] == '-' && strings.HasSuffix(id, "Neural")
}
