package voice

import "voicecast-server-go/internal/domain/emotion"

// Personality traits and communication styles recognized by the resolver.
const (
	TraitProfessional = "professional"
	TraitFriendly     = "friendly"
	TraitHumorous     = "humorous"
	TraitGrateful     = "grateful"
	TraitApologetic   = "apologetic"
	TraitHelpful      = "helpful"

	StyleExclamationHeavy = "exclamation_heavy"
	StyleFormal           = "formal"
	StyleEmojiHeavy       = "emoji_heavy"
	StyleCasual           = "casual"
	StyleQuestionHeavy    = "question_heavy"

	RelationshipFamily      = "family"
	RelationshipFriend      = "friend"
	RelationshipCloseFriend = "close_friend"
	RelationshipColleague   = "colleague"
)

// Base numeric defaults before any adjustment.
const (
	defaultStability       = 0.5
	defaultSimilarityBoost = 0.75
	defaultStyle           = 0.0
)

// traitVoiceRules maps personality traits to character voices. First match
// wins, ordered by priority. The character name is resolved through the
// registry so deployments can remap voices in config.
var traitVoiceRules = []struct {
	traits    []string
	character string
}{
	{[]string{TraitProfessional}, "antoni"},
	{[]string{TraitFriendly, TraitHumorous}, "rachel"},
	{[]string{TraitGrateful, TraitApologetic}, "bella"},
	{[]string{TraitHelpful}, "domi"},
}

// stabilityStyleRules sets stability from the communication style. First
// match wins.
var stabilityStyleRules = []struct {
	style     string
	stability float64
}{
	{StyleExclamationHeavy, 0.3},
	{StyleFormal, 0.7},
}

// similarityRelationshipRules sets similarity boost from the relationship.
var similarityRelationshipRules = []struct {
	relationship string
	boost        float64
}{
	{RelationshipFamily, 0.8},
	{RelationshipColleague, 0.6},
}

// emotionStabilityRules adjusts stability from the detected emotion signal.
// Single-select, first match wins, deltas are not cumulative.
var emotionStabilityRules = []struct {
	matches func(emotion.Signal) bool
	delta   float64
}{
	{func(s emotion.Signal) bool { return s.Has(emotion.CategoryJoy) || s.Tone == emotion.TonePositive }, -0.2},
	{func(s emotion.Signal) bool { return s.Has(emotion.CategoryUrgency) }, -0.2},
	{func(s emotion.Signal) bool { return s.Has(emotion.CategoryCalmness) }, +0.3},
}

// Resolver turns a speaker identity, an optional profile and an emotion
// signal into a concrete voice configuration. It has no failure mode.
type Resolver struct {
	registry *Registry
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve applies the resolution cascade. Later steps adjust, never replace,
// the outcome of earlier ones, and every numeric field ends up in [0,1].
func (r *Resolver) Resolve(speaker string, profile *Profile, signal emotion.Signal) Configuration {
	cfg := Configuration{
		VoiceID:         r.registry.Lookup(speaker),
		Stability:       defaultStability,
		SimilarityBoost: defaultSimilarityBoost,
		Style:           defaultStyle,
		SpeakerBoost:    true,
	}

	for _, rule := range traitVoiceRules {
		if hasAnyTrait(profile, rule.traits) {
			if r.registry.Known(rule.character) {
				cfg.VoiceID = r.registry.Lookup(rule.character)
			}
			break
		}
	}

	for _, rule := range stabilityStyleRules {
		if profile.HasStyle(rule.style) {
			cfg.Stability = rule.stability
			break
		}
	}

	for _, rule := range similarityRelationshipRules {
		if profile != nil && profile.RelationshipType == rule.relationship {
			cfg.SimilarityBoost = rule.boost
			break
		}
	}

	if profile.HasStyle(StyleEmojiHeavy) {
		cfg.Style = 0.7
	}

	// A manually assigned voice beats everything derived above.
	if profile != nil && profile.VoiceID != "" {
		cfg.VoiceID = profile.VoiceID
	}

	for _, rule := range emotionStabilityRules {
		if rule.matches(signal) {
			cfg.Stability += rule.delta
			break
		}
	}

	cfg.Stability = clamp01(cfg.Stability)
	cfg.SimilarityBoost = clamp01(cfg.SimilarityBoost)
	cfg.Style = clamp01(cfg.Style)
	return cfg
}

func hasAnyTrait(profile *Profile, traits []string) bool {
	for _, t := range traits {
		if profile.HasTrait(t) {
			return true
		}
	}
	return false
}
