package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"voicecast-server-go/internal/platform/errors"
)

// Loader reads configuration from a yaml file, layered over the defaults,
// with API keys overridable from the environment.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader for the given config file path. An empty path
// falls back to "config.yaml" in the working directory.
func NewLoader(path string) *Loader {
	if path == "" {
		path = "config.yaml"
	}
	return &Loader{path: path, useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration. A missing config file is not an
// error, the defaults apply as-is.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment variables")
		}
	}

	cfg := DefaultConfig()
	path := ""

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "load",
				fmt.Sprintf("failed to parse %s", l.path), err)
		}
		path = l.path
	case os.IsNotExist(err):
		// keep defaults
	default:
		return nil, errors.Wrap(errors.KindConfig, "load",
			fmt.Sprintf("failed to read %s", l.path), err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		for name, tc := range cfg.TTS {
			if tc.Type == "elevenlabs" {
				tc.APIKey = key
				cfg.TTS[name] = tc
			}
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
}

func validate(cfg *Config) error {
	if cfg.Selected.TTS == "" {
		return errors.New(errors.KindConfig, "validate", "no TTS module selected")
	}
	if _, ok := cfg.TTS[cfg.Selected.TTS]; !ok {
		return errors.New(errors.KindConfig, "validate",
			fmt.Sprintf("selected TTS module %q is not configured", cfg.Selected.TTS))
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = DefaultConfig().Batch.Workers
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultConfig().Database.Path
	}
	return nil
}
