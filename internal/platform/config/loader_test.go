package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).WithDotEnv(false)

	result, err := loader.Load()
	require.NoError(t, err)
	assert.Empty(t, result.Path)
	assert.Equal(t, 8080, result.Config.Server.Port)
	assert.Equal(t, 3, result.Config.Batch.Workers)
	assert.Equal(t, "ElevenLabsTTS", result.Config.Selected.TTS)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
batch:
  workers: 5
speakers:
  narrator_voice: narrator-voice-id
  voices:
    rachel: rachel-voice-id
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	result, err := NewLoader(path).WithDotEnv(false).Load()
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.Equal(t, 9090, result.Config.Server.Port)
	assert.Equal(t, 5, result.Config.Batch.Workers)
	assert.Equal(t, "narrator-voice-id", result.Config.Speakers.NarratorVoice)
	assert.Equal(t, "rachel-voice-id", result.Config.Speakers.Voices["rachel"])
	// untouched sections keep defaults
	assert.Equal(t, "data/audio", result.Config.Audio.OutputDir)
}

func TestLoader_EnvOverridesAPIKeys(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "el-key-from-env")
	t.Setenv("OPENAI_API_KEY", "oa-key-from-env")

	result, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).WithDotEnv(false).Load()
	require.NoError(t, err)
	assert.Equal(t, "el-key-from-env", result.Config.TTS["ElevenLabsTTS"].APIKey)
	assert.Equal(t, "oa-key-from-env", result.Config.LLM.APIKey)
	// edge provider carries no key and must stay untouched
	assert.Empty(t, result.Config.TTS["EdgeTTS"].APIKey)
}

func TestLoader_RejectsUnknownSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
selected_module:
  TTS: DoesNotExist
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewLoader(path).WithDotEnv(false).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DoesNotExist")
}

func TestLoader_CacheTTLDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
cache:
  enabled: true
  ttl: 45m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	result, err := NewLoader(path).WithDotEnv(false).Load()
	require.NoError(t, err)
	assert.True(t, result.Config.Cache.Enabled)
	assert.Equal(t, 45*time.Minute, result.Config.Cache.TTL)
	// fields absent from the file keep their defaults
	assert.Equal(t, "voicecast:fragment:", result.Config.Cache.Prefix)
}

func TestLoader_RejectsBadCacheTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: soon\n"), 0o644))

	_, err := NewLoader(path).WithDotEnv(false).Load()
	require.Error(t, err)
}

func TestLoader_InvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))

	_, err := NewLoader(path).WithDotEnv(false).Load()
	require.Error(t, err)
}
