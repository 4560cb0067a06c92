package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(&config.TTSConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		ModelID: "eleven_monolingual_v1",
	}, nil)
}

func TestSynthesize(t *testing.T) {
	var captured synthesisRequest
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("mp3-bytes"))
	})

	audio, err := provider.Synthesize(context.Background(), "hello there", voice.Configuration{
		VoiceID:         "voice-1",
		Stability:       0.3,
		SimilarityBoost: 0.8,
		Style:           0.7,
		SpeakerBoost:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "hello there", captured.Text)
	assert.Equal(t, 0.3, captured.VoiceSettings.Stability)
	assert.Equal(t, 0.8, captured.VoiceSettings.SimilarityBoost)
	assert.Equal(t, 0.7, captured.VoiceSettings.Style)
	assert.True(t, captured.VoiceSettings.UseSpeakerBoost)
}

func TestSynthesize_BackendError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := provider.Synthesize(context.Background(), "hello", voice.Configuration{VoiceID: "voice-1"})

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSynthesis))
	assert.Contains(t, err.Error(), "429")
}

func TestSynthesize_EmptyVoiceID(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := provider.Synthesize(context.Background(), "hello", voice.Configuration{})
	require.Error(t, err)
}

func TestVoices(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Rachel","labels":{"gender":"female"}}]}`))
	})

	voices, err := provider.Voices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, "v1", voices[0].ID)
	assert.Equal(t, "Rachel", voices[0].Name)
	assert.Equal(t, "female", voices[0].Gender)
}
