package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()

	content := fmt.Sprintf(`server:
  ip: 127.0.0.1
  port: 0
log:
  log_level: info
  log_dir: %q
audio:
  output_dir: %q
database:
  path: %q
selected_module:
  TTS: EdgeTTS
`,
		filepath.Join(tmp, "logs"),
		filepath.Join(tmp, "audio"),
		filepath.Join(tmp, "voicecast.db"),
	)

	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"storage:open-database",
		"voices:init-registry",
		"tts:init-provider",
		"script:init-generator",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestInitGraphDependenciesResolvable(t *testing.T) {
	seen := map[string]bool{}
	for _, step := range InitGraph() {
		for _, dep := range step.DependsOn {
			if !seen[dep] {
				t.Fatalf("step %s depends on %s which is not satisfied yet", step.ID, dep)
			}
		}
		seen[step.ID] = true
	}
}

func TestExecuteInitGraph(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	state := &appState{configPath: writeTestConfig(t)}

	if err := executeInitSteps(context.Background(), InitGraph(), state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	defer state.logger.Close()
	defer state.provider.Close()

	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.db == nil {
		t.Fatal("database is nil after init")
	}
	if state.registry == nil {
		t.Fatal("voice registry is nil after init")
	}
	if state.provider == nil {
		t.Fatal("TTS provider is nil after init")
	}
	// No OpenAI key in the test config, so the generator stays disabled.
	if state.generator != nil {
		t.Fatal("script generator should be nil without an API key")
	}
}

func TestExecuteInitSteps_UnsatisfiedDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "b",
			Title:     "needs a",
			DependsOn: []string{"a"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Fatal("expected dependency error")
	}
}
