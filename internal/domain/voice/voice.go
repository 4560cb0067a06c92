package voice

// Profile carries the learned personality and relationship signals for one
// speaker. All fields are optional, a zero profile resolves fine.
type Profile struct {
	Speaker            string   `json:"speaker"`
	PersonalityTraits  []string `json:"personality_traits"`
	CommunicationStyle []string `json:"communication_style"`
	RelationshipType   string   `json:"relationship_type"`
	TrustScore         float64  `json:"trust_score"`

	// VoiceID is a manually assigned voice that overrides registry lookup.
	VoiceID string `json:"voice_id,omitempty"`
}

// Configuration is the fully resolved set of synthesis parameters for one line.
type Configuration struct {
	VoiceID         string  `json:"voice_id"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	SpeakerBoost    bool    `json:"use_speaker_boost"`
}

// HasTrait reports whether the profile carries the given personality trait.
func (p *Profile) HasTrait(trait string) bool {
	if p == nil {
		return false
	}
	for _, t := range p.PersonalityTraits {
		if t == trait {
			return true
		}
	}
	return false
}

// HasStyle reports whether the profile carries the given communication style.
func (p *Profile) HasStyle(style string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.CommunicationStyle {
		if s == style {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
