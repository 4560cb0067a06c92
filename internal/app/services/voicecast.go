package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"voicecast-server-go/internal/domain/audio"
	"voicecast-server-go/internal/domain/batch"
	"voicecast-server-go/internal/domain/conversation"
	"voicecast-server-go/internal/domain/script"
	"voicecast-server-go/internal/domain/tts"
	"voicecast-server-go/internal/domain/voice"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
	"voicecast-server-go/internal/platform/storage"
)

// ScriptGenerator abstracts the LLM so the service can run without one.
type ScriptGenerator interface {
	Generate(ctx context.Context, conv conversation.Conversation) (*script.Result, error)
}

// VoiceCastService runs the import-script-synthesize-assemble pipeline.
type VoiceCastService struct {
	cfg          *config.Config
	logger       *logging.Logger
	registry     *voice.Registry
	provider     tts.Provider
	generator    ScriptGenerator
	orchestrator *batch.Orchestrator
	assembler    *audio.Assembler
	sessions     *storage.SessionRepository
	profiles     *storage.ProfileRepository
	generations  *storage.GenerationRepository
}

// ImportRequest is an uploaded conversation.
type ImportRequest struct {
	Platform  string `json:"platform"`
	GroupName string `json:"group_name"`
	MainUser  string `json:"main_user"`
	Content   string `json:"conversation"`
}

// GenerateOptions tunes one generation run.
type GenerateOptions struct {
	// WithNarrator prepends a synthesized narrator introduction.
	WithNarrator bool `json:"with_narrator"`
}

// GenerateOutcome is the full result of one generation run.
type GenerateOutcome struct {
	SessionID string                   `json:"session_id"`
	Summary   string                   `json:"summary"`
	Results   []batch.GenerationResult `json:"results"`
	Artifact  *audio.Artifact          `json:"artifact,omitempty"`
}

func NewVoiceCastService(
	cfg *config.Config,
	logger *logging.Logger,
	registry *voice.Registry,
	provider tts.Provider,
	generator ScriptGenerator,
	sessions *storage.SessionRepository,
	profiles *storage.ProfileRepository,
	generations *storage.GenerationRepository,
) *VoiceCastService {
	resolver := voice.NewResolver(registry)
	return &VoiceCastService{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		provider:  provider,
		generator: generator,
		orchestrator: batch.NewOrchestrator(resolver, provider,
			cfg.Audio.OutputDir, cfg.Audio.Format, cfg.Batch.Workers, logger),
		assembler:   audio.NewAssembler(logger),
		sessions:    sessions,
		profiles:    profiles,
		generations: generations,
	}
}

// Import parses an uploaded conversation, learns speaker profiles and stores
// the session.
func (s *VoiceCastService) Import(ctx context.Context, req ImportRequest) (*storage.Session, error) {
	if req.MainUser == "" {
		return nil, errors.New(errors.KindConfig, "voicecast.import", "main_user is required")
	}

	messages, err := conversation.ParseWhatsAppExport(req.Content)
	if err != nil {
		return nil, err
	}

	platform := req.Platform
	if platform == "" {
		platform = "whatsapp"
	}

	session := &storage.Session{
		SessionID:     uuid.NewString(),
		Platform:      platform,
		GroupName:     req.GroupName,
		MainUser:      req.MainUser,
		Status:        storage.StatusUploaded,
		TotalMessages: len(messages),
		RawContent:    req.Content,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	learned := conversation.BuildProfiles(messages, req.MainUser)
	if err := s.profiles.SaveProfiles(ctx, session.SessionID, learned); err != nil {
		return nil, err
	}

	s.logger.InfoTag("HTTP", "imported session %s: %d messages, %d participants",
		session.SessionID, len(messages), len(learned))
	return session, nil
}

// Generate runs the full pipeline for an imported session: script the
// conversation, synthesize every line, assemble the artifact and persist the
// outcome.
func (s *VoiceCastService) Generate(ctx context.Context, sessionID string, opts GenerateOptions) (*GenerateOutcome, error) {
	session, err := s.sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New(errors.KindStorage, "voicecast.generate", "session not found")
	}

	messages, err := conversation.ParseWhatsAppExport(session.RawContent)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.buildScript(ctx, session, messages)
	if err != nil {
		return nil, err
	}

	session.Summary = result.Summary
	session.Status = storage.StatusSynthesizing
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	return s.GenerateFromScript(ctx, sessionID, result.Summary, result.Lines, profiles, opts)
}

// GenerateFromScript synthesizes a caller-supplied script for a session.
func (s *VoiceCastService) GenerateFromScript(ctx context.Context, sessionID, summary string, lines []batch.ScriptLine, profiles map[string]*voice.Profile, opts GenerateOptions) (*GenerateOutcome, error) {
	results, err := s.orchestrator.GenerateBatch(ctx, lines, profiles, sessionID)
	if err != nil {
		s.sessions.UpdateStatus(ctx, sessionID, storage.StatusFailed)
		return nil, err
	}

	if err := s.generations.SaveResults(ctx, sessionID, lines, results); err != nil {
		return nil, err
	}

	narratorPath := ""
	if opts.WithNarrator {
		narratorPath, err = s.synthesizeNarrator(ctx, sessionID, summary)
		if err != nil {
			// Narration is garnish, its loss never fails a generation.
			s.logger.WarnTag("TTS", "session %s: narrator synthesis failed: %v", sessionID, err)
			narratorPath = ""
		}
	}

	outcome := &GenerateOutcome{
		SessionID: sessionID,
		Summary:   summary,
		Results:   results,
	}

	artifactPath := filepath.Join(s.cfg.Audio.OutputDir, fmt.Sprintf("%s_final.%s", sessionID, s.cfg.Audio.Format))
	artifact, err := s.assembler.Assemble(results, narratorPath, artifactPath)
	if err != nil {
		if errors.IsKind(err, errors.KindAssembly) {
			// Every line failed. The per-line results still tell the caller
			// what happened.
			s.sessions.UpdateStatus(ctx, sessionID, storage.StatusFailed)
			return outcome, err
		}
		return nil, err
	}
	outcome.Artifact = artifact

	if err := s.sessions.SetArtifact(ctx, sessionID, artifact.FilePath, artifact.Duration); err != nil {
		return nil, err
	}

	s.cleanupFragments(results, narratorPath)
	return outcome, nil
}

// Results returns a session and its stored per-line outcomes.
func (s *VoiceCastService) Results(ctx context.Context, sessionID string) (*storage.Session, []batch.GenerationResult, error) {
	session, err := s.sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, errors.New(errors.KindStorage, "voicecast.results", "session not found")
	}

	results, err := s.generations.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, results, nil
}

// Sessions lists sessions, optionally scoped to one main user.
func (s *VoiceCastService) Sessions(ctx context.Context, mainUser string) ([]storage.Session, error) {
	return s.sessions.List(ctx, mainUser)
}

// SetSpeakerVoice pins a manual voice for one speaker of a session.
func (s *VoiceCastService) SetSpeakerVoice(ctx context.Context, sessionID, speaker, voiceID string) error {
	return s.profiles.SetVoiceOverride(ctx, sessionID, speaker, voiceID)
}

// Voices lists the voices offered by the active backend.
func (s *VoiceCastService) Voices(ctx context.Context) ([]tts.Voice, error) {
	return s.provider.Voices(ctx)
}

func (s *VoiceCastService) buildScript(ctx context.Context, session *storage.Session, messages []conversation.Message) (*script.Result, error) {
	conv := conversation.Conversation{
		Platform:     session.Platform,
		GroupName:    session.GroupName,
		MainUser:     session.MainUser,
		Messages:     messages,
		Participants: conversation.ParticipantsOf(messages, session.MainUser),
	}

	if s.generator == nil {
		return nil, errors.New(errors.KindScript, "voicecast.generate",
			"no script generator configured (set OPENAI_API_KEY)")
	}
	return s.generator.Generate(ctx, conv)
}

// synthesizeNarrator voices a short introduction with the narrator voice.
func (s *VoiceCastService) synthesizeNarrator(ctx context.Context, sessionID, summary string) (string, error) {
	intro := "Here's what everyone has been up to."
	if summary != "" {
		intro = fmt.Sprintf("Here's a quick update from the group. %s", summary)
	}

	cfg := voice.Configuration{
		VoiceID:         s.registry.Narrator(),
		Stability:       0.5,
		SimilarityBoost: 0.75,
		SpeakerBoost:    true,
	}
	data, err := s.provider.Synthesize(ctx, intro, cfg)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.cfg.Audio.OutputDir, fmt.Sprintf("%s_narrator.%s", sessionID, s.cfg.Audio.Format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// cleanupFragments removes per-line files once the artifact exists, when
// configured to.
func (s *VoiceCastService) cleanupFragments(results []batch.GenerationResult, narratorPath string) {
	if !s.cfg.Audio.DeleteAudio {
		return
	}
	for _, r := range results {
		if r.FilePath != "" {
			os.Remove(r.FilePath)
		}
	}
	if narratorPath != "" {
		os.Remove(narratorPath)
	}
}
