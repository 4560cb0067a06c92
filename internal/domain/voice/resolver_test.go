package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voicecast-server-go/internal/domain/emotion"
)

const (
	narratorID = "narrator-voice"
	rachelID   = "rachel-voice"
	domiID     = "domi-voice"
	bellaID    = "bella-voice"
	antoniID   = "antoni-voice"
)

func testRegistry() *Registry {
	return NewRegistry(narratorID, map[string]string{
		"rachel": rachelID,
		"domi":   domiID,
		"bella":  bellaID,
		"antoni": antoniID,
		"alice":  "alice-voice",
	})
}

func TestRegistry_Lookup(t *testing.T) {
	r := testRegistry()

	assert.Equal(t, "alice-voice", r.Lookup("alice"))
	assert.Equal(t, "alice-voice", r.Lookup("ALICE"))
	assert.Equal(t, "alice-voice", r.Lookup("  Alice "))
	assert.Equal(t, narratorID, r.Lookup("unknown speaker"))
	assert.Equal(t, narratorID, r.Narrator())
}

func TestResolve_Defaults(t *testing.T) {
	r := NewResolver(testRegistry())

	cfg := r.Resolve("nobody", nil, emotion.Neutral())

	assert.Equal(t, narratorID, cfg.VoiceID)
	assert.Equal(t, 0.5, cfg.Stability)
	assert.Equal(t, 0.75, cfg.SimilarityBoost)
	assert.Equal(t, 0.0, cfg.Style)
	assert.True(t, cfg.SpeakerBoost)
}

func TestResolve_TraitVoicePriority(t *testing.T) {
	r := NewResolver(testRegistry())

	tests := []struct {
		name   string
		traits []string
		want   string
	}{
		{"professional wins over all", []string{TraitHelpful, TraitHumorous, TraitProfessional}, antoniID},
		{"friendly", []string{TraitFriendly}, rachelID},
		{"humorous shares a voice with friendly", []string{TraitHumorous}, rachelID},
		{"grateful beats helpful", []string{TraitHelpful, TraitGrateful}, bellaID},
		{"apologetic", []string{TraitApologetic}, bellaID},
		{"helpful", []string{TraitHelpful}, domiID},
		{"unrecognized trait keeps base voice", []string{"stoic"}, "alice-voice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := r.Resolve("alice", &Profile{PersonalityTraits: tt.traits}, emotion.Neutral())
			assert.Equal(t, tt.want, cfg.VoiceID)
		})
	}
}

func TestResolve_CommunicationStyle(t *testing.T) {
	r := NewResolver(testRegistry())

	cfg := r.Resolve("alice", &Profile{CommunicationStyle: []string{StyleExclamationHeavy}}, emotion.Neutral())
	assert.Equal(t, 0.3, cfg.Stability)

	cfg = r.Resolve("alice", &Profile{CommunicationStyle: []string{StyleFormal}}, emotion.Neutral())
	assert.Equal(t, 0.7, cfg.Stability)

	// exclamation_heavy outranks formal
	cfg = r.Resolve("alice", &Profile{CommunicationStyle: []string{StyleFormal, StyleExclamationHeavy}}, emotion.Neutral())
	assert.Equal(t, 0.3, cfg.Stability)

	cfg = r.Resolve("alice", &Profile{CommunicationStyle: []string{StyleEmojiHeavy}}, emotion.Neutral())
	assert.Equal(t, 0.7, cfg.Style)
}

func TestResolve_Relationship(t *testing.T) {
	r := NewResolver(testRegistry())

	cfg := r.Resolve("alice", &Profile{RelationshipType: RelationshipFamily}, emotion.Neutral())
	assert.Equal(t, 0.8, cfg.SimilarityBoost)

	cfg = r.Resolve("alice", &Profile{RelationshipType: RelationshipColleague}, emotion.Neutral())
	assert.Equal(t, 0.6, cfg.SimilarityBoost)

	cfg = r.Resolve("alice", &Profile{RelationshipType: RelationshipFriend}, emotion.Neutral())
	assert.Equal(t, 0.75, cfg.SimilarityBoost)
}

func TestResolve_ManualVoiceOverride(t *testing.T) {
	r := NewResolver(testRegistry())

	profile := &Profile{
		PersonalityTraits: []string{TraitProfessional},
		VoiceID:           "custom-voice",
	}
	cfg := r.Resolve("alice", profile, emotion.Neutral())
	assert.Equal(t, "custom-voice", cfg.VoiceID)
}

func TestResolve_EmotionSingleSelect(t *testing.T) {
	r := NewResolver(testRegistry())

	joy := emotion.Signal{Categories: []emotion.Category{emotion.CategoryJoy}, Intensity: emotion.IntensityMedium, Tone: emotion.TonePositive}
	cfg := r.Resolve("alice", nil, joy)
	assert.InDelta(t, 0.3, cfg.Stability, 1e-9)

	urgent := emotion.Signal{Categories: []emotion.Category{emotion.CategoryUrgency}, Intensity: emotion.IntensityMedium, Tone: emotion.ToneNeutral}
	cfg = r.Resolve("alice", nil, urgent)
	assert.InDelta(t, 0.3, cfg.Stability, 1e-9)

	calm := emotion.Signal{Categories: []emotion.Category{emotion.CategoryCalmness}, Intensity: emotion.IntensityMedium, Tone: emotion.ToneNeutral}
	cfg = r.Resolve("alice", nil, calm)
	assert.InDelta(t, 0.8, cfg.Stability, 1e-9)

	// joy outranks calmness, deltas never stack
	mixed := emotion.Signal{
		Categories: []emotion.Category{emotion.CategoryJoy, emotion.CategoryUrgency, emotion.CategoryCalmness},
		Intensity:  emotion.IntensityMedium,
		Tone:       emotion.TonePositive,
	}
	cfg = r.Resolve("alice", nil, mixed)
	assert.InDelta(t, 0.3, cfg.Stability, 1e-9)
}

func TestResolve_ClampInvariant(t *testing.T) {
	r := NewResolver(testRegistry())

	// exclamation_heavy 0.3 then joy -0.2 stays above the floor
	joy := emotion.Signal{Categories: []emotion.Category{emotion.CategoryJoy}, Tone: emotion.TonePositive}
	cfg := r.Resolve("alice", &Profile{CommunicationStyle: []string{StyleExclamationHeavy}}, joy)
	assert.InDelta(t, 0.1, cfg.Stability, 1e-9)

	// formal 0.7 then calmness +0.3 hits the ceiling exactly
	calm := emotion.Signal{Categories: []emotion.Category{emotion.CategoryCalmness}}
	cfg = r.Resolve("alice", &Profile{CommunicationStyle: []string{StyleFormal}}, calm)
	assert.Equal(t, 1.0, cfg.Stability)

	for _, signal := range []emotion.Signal{joy, calm, emotion.Neutral()} {
		for _, styles := range [][]string{nil, {StyleExclamationHeavy}, {StyleFormal}, {StyleEmojiHeavy}} {
			cfg := r.Resolve("alice", &Profile{CommunicationStyle: styles}, signal)
			assert.GreaterOrEqual(t, cfg.Stability, 0.0)
			assert.LessOrEqual(t, cfg.Stability, 1.0)
			assert.GreaterOrEqual(t, cfg.Style, 0.0)
			assert.LessOrEqual(t, cfg.Style, 1.0)
			assert.GreaterOrEqual(t, cfg.SimilarityBoost, 0.0)
			assert.LessOrEqual(t, cfg.SimilarityBoost, 1.0)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver(testRegistry())
	profile := &Profile{
		PersonalityTraits:  []string{TraitHumorous},
		CommunicationStyle: []string{StyleEmojiHeavy},
		RelationshipType:   RelationshipFamily,
	}
	a := r.Resolve("alice", profile, emotion.Analyze("haha hurry up!"))
	b := r.Resolve("alice", profile, emotion.Analyze("haha hurry up!"))
	assert.Equal(t, a, b)
}
