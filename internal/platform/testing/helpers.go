package testing

import (
	"testing"

	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/logging"
)

// SetupTestConfig returns a config suitable for unit tests, with output
// directories redirected into the test's temp dir.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Log.Level = "debug"
	cfg.Log.Dir = t.TempDir()
	cfg.Audio.OutputDir = t.TempDir()
	return cfg
}

// SetupTestLogger returns a logger writing into the test's temp dir.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	cfg := SetupTestConfig(t)
	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	return logger
}
