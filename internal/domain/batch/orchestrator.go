package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"voicecast-server-go/internal/domain/emotion"
	"voicecast-server-go/internal/domain/eventbus"
	"voicecast-server-go/internal/domain/tts"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
)

const defaultWorkers = 3

// Orchestrator fans a script out to the synthesis backend with a bounded
// worker pool and collects one result per line, preserving input order.
// A single line's failure never aborts the batch.
type Orchestrator struct {
	resolver  *voice.Resolver
	provider  tts.Provider
	outputDir string
	format    string
	workers   int64
	logger    *logging.Logger
}

func NewOrchestrator(resolver *voice.Resolver, provider tts.Provider, outputDir, format string, workers int, logger *logging.Logger) *Orchestrator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if format == "" {
		format = "mp3"
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Orchestrator{
		resolver:  resolver,
		provider:  provider,
		outputDir: outputDir,
		format:    format,
		workers:   int64(workers),
		logger:    logger,
	}
}

// FragmentName is the deterministic per-line fragment filename. Keying on
// session and line number keeps concurrent regenerations of the same session
// from colliding.
func FragmentName(sessionID string, lineNumber int, ext string) string {
	return fmt.Sprintf("%s_%03d.%s", sessionID, lineNumber, ext)
}

// GenerateBatch synthesizes every line at most once and returns one result
// per line in original order. Per-line failures are recorded, not escalated.
// Only systemic failures (unwritable output location, cancellation) return an
// error; on cancellation the returned results cover completed lines only.
func (o *Orchestrator) GenerateBatch(ctx context.Context, lines []ScriptLine, profiles map[string]*voice.Profile, sessionID string) ([]GenerationResult, error) {
	if len(lines) == 0 {
		return []GenerationResult{}, nil
	}

	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "batch.generate",
			"failed to create output directory", err)
	}

	o.logger.InfoTag("BATCH", "session %s: dispatching %d lines across %d workers",
		sessionID, len(lines), o.workers)
	eventbus.Publish(eventbus.EventBatchStarted, eventbus.BatchEventData{
		SessionID: sessionID,
		Lines:     len(lines),
	})

	results := make([]GenerationResult, len(lines))
	done := make([]bool, len(lines))
	sem := semaphore.NewWeighted(o.workers)

	g, gctx := errgroup.WithContext(ctx)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			results[i] = o.synthesizeLine(gctx, line, profiles[line.Speaker], sessionID)
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Cancelled mid-batch. Keep only fully recorded lines so no result
		// references a partial artifact.
		completed := make([]GenerationResult, 0, len(lines))
		for i, ok := range done {
			if ok {
				completed = append(completed, results[i])
			}
		}
		return completed, errors.Wrap(errors.KindSynthesis, "batch.generate", "batch cancelled", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	o.logger.InfoTag("BATCH", "session %s: %d/%d lines synthesized", sessionID, succeeded, len(lines))
	eventbus.Publish(eventbus.EventBatchCompleted, eventbus.BatchEventData{
		SessionID: sessionID,
		Lines:     len(lines),
		Succeeded: succeeded,
		Failed:    len(lines) - succeeded,
	})

	return results, nil
}

// synthesizeLine resolves, synthesizes and persists one line. Every failure
// path returns a failure result, never an error, so the batch continues.
func (o *Orchestrator) synthesizeLine(ctx context.Context, line ScriptLine, profile *voice.Profile, sessionID string) GenerationResult {
	signal := emotion.Analyze(line.Text)
	cfg := o.resolver.Resolve(line.Speaker, profile, signal)

	result := GenerationResult{
		LineNumber:  line.LineNumber,
		Speaker:     line.Speaker,
		VoiceConfig: cfg,
		Emotion:     signal,
	}

	audio, err := o.provider.Synthesize(ctx, line.Text, cfg)
	if err != nil {
		o.logger.WarnTag("BATCH", "session %s line %d: synthesis failed: %v",
			sessionID, line.LineNumber, err)
		result.ErrorMessage = err.Error()
		o.publishLineEvent(sessionID, result)
		return result
	}

	path := filepath.Join(o.outputDir, FragmentName(sessionID, line.LineNumber, o.format))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		o.logger.WarnTag("BATCH", "session %s line %d: failed to persist fragment: %v",
			sessionID, line.LineNumber, err)
		result.ErrorMessage = fmt.Sprintf("failed to persist fragment: %v", err)
		o.publishLineEvent(sessionID, result)
		return result
	}

	result.Success = true
	result.FilePath = path
	result.FileSizeBytes = int64(len(audio))
	result.EstimatedLength = EstimateSpokenLength(line.Text)
	o.publishLineEvent(sessionID, result)
	return result
}

func (o *Orchestrator) publishLineEvent(sessionID string, result GenerationResult) {
	data := eventbus.LineEventData{
		SessionID:  sessionID,
		LineNumber: result.LineNumber,
		Speaker:    result.Speaker,
		FilePath:   result.FilePath,
		Error:      result.ErrorMessage,
	}
	if result.Success {
		eventbus.Publish(eventbus.EventLineSynthesized, data)
	} else {
		eventbus.Publish(eventbus.EventLineFailed, data)
	}
}
