package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicecast-server-go/internal/domain/tts"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/logging"
)

// Provider is a caching decorator around a synthesis backend. Identical
// (text, configuration) pairs are served from redis, so regenerating a
// session does not re-bill unchanged lines. Cache trouble never fails a
// synthesis call, it degrades to the inner provider.
type Provider struct {
	inner  tts.Provider
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logging.Logger
}

// Wrap builds the caching decorator. The redis connection is verified up
// front so a misconfigured cache surfaces at startup, not mid-batch.
func Wrap(inner tts.Provider, cfg config.CacheConfig, logger *logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("fragment cache unreachable at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "voicecast:fragment:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Provider{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (p *Provider) Synthesize(ctx context.Context, text string, cfg voice.Configuration) ([]byte, error) {
	key := p.key(text, cfg)

	if audio, err := p.client.Get(ctx, key).Bytes(); err == nil && len(audio) > 0 {
		p.logger.DebugTag("TTS", "fragment cache hit for voice %s", cfg.VoiceID)
		return audio, nil
	} else if err != nil && err != redis.Nil {
		p.logger.WarnTag("TTS", "fragment cache read failed: %v", err)
	}

	audio, err := p.inner.Synthesize(ctx, text, cfg)
	if err != nil {
		return nil, err
	}

	if err := p.client.Set(ctx, key, audio, p.ttl).Err(); err != nil {
		p.logger.WarnTag("TTS", "fragment cache write failed: %v", err)
	}
	return audio, nil
}

func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return p.inner.Voices(ctx)
}

func (p *Provider) Close() error {
	if err := p.client.Close(); err != nil {
		return err
	}
	return p.inner.Close()
}

func (p *Provider) key(text string, cfg voice.Configuration) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f|%.2f|%.2f|%t",
		text, cfg.VoiceID, cfg.Stability, cfg.SimilarityBoost, cfg.Style, cfg.SpeakerBoost)))
	return p.prefix + hex.EncodeToString(sum[:])
}
