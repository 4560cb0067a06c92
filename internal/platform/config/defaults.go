package config

import "time"

// DefaultConfig returns the built-in configuration, used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:        "0.0.0.0",
			Port:      8080,
			StaticDir: "./web",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Audio: AudioConfig{
			OutputDir:   "data/audio",
			Format:      "mp3",
			DeleteAudio: false,
		},
		Database: DatabaseConfig{
			Path: "data/voicecast.db",
		},
		Batch: BatchConfig{
			Workers: 3,
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "127.0.0.1:6379",
			Prefix:  "voicecast:fragment:",
			TTL:     30 * time.Minute,
		},
		Speakers: SpeakerConfig{
			// The narrator voice doubles as the fallback for unknown speakers.
			NarratorVoice: "JBFqnCBsd6RMkjVDRZzb", // George
			Voices: map[string]string{
				"rachel": "21m00Tcm4TlvDq8ikWAM",
				"domi":   "AZnzlk1XvdvUeBnXmlld",
				"bella":  "EXAVITQu4vr4xnSDxMaL",
				"antoni": "ErXwobaYiN019PkySvjV",
			},
		},
		TTS: map[string]TTSConfig{
			"ElevenLabsTTS": {
				Type:    "elevenlabs",
				Voice:   "21m00Tcm4TlvDq8ikWAM",
				Format:  "mp3",
				BaseURL: "https://api.elevenlabs.io/v1",
				APIKey:  "your_api_key",
				ModelID: "eleven_monolingual_v1",
			},
			"EdgeTTS": {
				Type:   "edge",
				Voice:  "en-US-AriaNeural",
				Format: "mp3",
			},
		},
		LLM: LLMConfig{
			Type:        "openai",
			ModelName:   "gpt-4",
			BaseURL:     "https://api.openai.com/v1",
			APIKey:      "your_api_key",
			Temperature: 0.7,
			MaxTokens:   800,
		},
		Selected: SelectedConfig{
			TTS: "ElevenLabsTTS",
			LLM: "OpenAILLM",
		},
	}
}
