package conversation

import (
	"strings"

	"voicecast-server-go/internal/domain/voice"
)

// Trait markers, matched against a participant's combined message text.
var traitMarkers = []struct {
	trait   string
	markers []string
}{
	{voice.TraitHumorous, []string{"haha", "lol", "funny", "😂", "😄"}},
	{voice.TraitGrateful, []string{"thanks", "thank you", "appreciate"}},
	{voice.TraitApologetic, []string{"sorry", "apologize", "my bad"}},
	{voice.TraitHelpful, []string{"help", "support", "assist"}},
	{voice.TraitProfessional, []string{"work", "job", "career", "business"}},
}

var relationshipMarkers = []struct {
	relationship string
	markers      []string
}{
	{voice.RelationshipFamily, []string{"mom", "dad", "family", "home", "parents"}},
	{voice.RelationshipColleague, []string{"work", "office", "meeting", "project", "boss"}},
	{voice.RelationshipCloseFriend, []string{"best", "close", "love", "miss", "heart"}},
}

var (
	trustPositive = []string{"trust", "reliable", "honest", "confidential", "secret"}
	trustNegative = []string{"lie", "fake", "untrustworthy", "suspicious"}
	formalWords   = []string{"sir", "madam", "please", "kindly"}
	casualWords   = []string{"hey", "yo", "sup", "cool"}
)

// BuildProfiles derives a voice profile per participant from their messages.
// The main user is excluded, their lines are narrated rather than voiced.
func BuildProfiles(messages []Message, mainUser string) map[string]*voice.Profile {
	byParticipant := make(map[string][]Message)
	for _, msg := range messages {
		if msg.Sender == "" || msg.Sender == mainUser || msg.IsMedia {
			continue
		}
		byParticipant[msg.Sender] = append(byParticipant[msg.Sender], msg)
	}

	profiles := make(map[string]*voice.Profile, len(byParticipant))
	for participant, msgs := range byParticipant {
		profiles[participant] = profileFromMessages(participant, msgs)
	}
	return profiles
}

func profileFromMessages(participant string, msgs []Message) *voice.Profile {
	var combined strings.Builder
	for _, m := range msgs {
		combined.WriteString(m.Content)
		combined.WriteString(" ")
	}
	text := combined.String()
	lowered := strings.ToLower(text)

	return &voice.Profile{
		Speaker:            participant,
		PersonalityTraits:  detectTraits(lowered),
		CommunicationStyle: detectStyles(text, lowered, len(msgs)),
		RelationshipType:   detectRelationship(lowered),
		TrustScore:         trustScore(lowered),
	}
}

func detectTraits(lowered string) []string {
	var traits []string
	for _, entry := range traitMarkers {
		for _, marker := range entry.markers {
			if strings.Contains(lowered, marker) {
				traits = append(traits, entry.trait)
				break
			}
		}
	}
	return traits
}

func detectStyles(text, lowered string, messageCount int) []string {
	var styles []string
	if countEmoji(text) > messageCount/2 {
		styles = append(styles, voice.StyleEmojiHeavy)
	}
	if containsAny(lowered, formalWords) {
		styles = append(styles, voice.StyleFormal)
	}
	if containsAny(lowered, casualWords) {
		styles = append(styles, voice.StyleCasual)
	}
	if strings.Count(text, "?")*10 > messageCount*3 {
		styles = append(styles, voice.StyleQuestionHeavy)
	}
	if strings.Count(text, "!")*10 > messageCount*2 {
		styles = append(styles, voice.StyleExclamationHeavy)
	}
	return styles
}

func detectRelationship(lowered string) string {
	for _, entry := range relationshipMarkers {
		if containsAny(lowered, entry.markers) {
			return entry.relationship
		}
	}
	return voice.RelationshipFriend
}

// trustScore starts at 0.5 and moves 0.1 per matched indicator, clamped to
// [0,1].
func trustScore(lowered string) float64 {
	score := 0.5
	for _, marker := range trustPositive {
		if strings.Contains(lowered, marker) {
			score += 0.1
		}
	}
	for _, marker := range trustNegative {
		if strings.Contains(lowered, marker) {
			score -= 0.1
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func containsAny(lowered string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func countEmoji(text string) int {
	count := 0
	for _, r := range text {
		if (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF) {
			count++
		}
	}
	return count
}
