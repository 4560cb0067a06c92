package voice

import "strings"

// Registry is the static speaker-to-voice table. Lookups are case-insensitive
// and unknown speakers fall back to the narrator voice. The registry is
// read-only after construction and safe for concurrent use.
type Registry struct {
	narratorVoice string
	voices        map[string]string
}

func NewRegistry(narratorVoice string, voices map[string]string) *Registry {
	normalized := make(map[string]string, len(voices))
	for name, id := range voices {
		normalized[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return &Registry{
		narratorVoice: narratorVoice,
		voices:        normalized,
	}
}

// Lookup resolves a speaker name to a voice identity, falling back to the
// narrator voice for unrecognized speakers.
func (r *Registry) Lookup(speaker string) string {
	if id, ok := r.voices[strings.ToLower(strings.TrimSpace(speaker))]; ok {
		return id
	}
	return r.narratorVoice
}

// Narrator returns the narrator voice identity, which doubles as the default.
func (r *Registry) Narrator() string {
	return r.narratorVoice
}

// Known reports whether the speaker has an explicit registry entry.
func (r *Registry) Known(speaker string) bool {
	_, ok := r.voices[strings.ToLower(strings.TrimSpace(speaker))]
	return ok
}
