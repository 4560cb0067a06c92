package conversation

import "time"

// Message is one parsed chat message.
type Message struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsMedia   bool      `json:"is_media,omitempty"`
}

// Conversation is an imported multi-party chat ready for scripting.
type Conversation struct {
	Platform     string    `json:"platform"`
	GroupName    string    `json:"group_name"`
	MainUser     string    `json:"main_user"`
	Messages     []Message `json:"messages"`
	Participants []string  `json:"participants"`
}

// ParticipantsOf lists unique senders, excluding the main user, in first
// appearance order.
func ParticipantsOf(messages []Message, mainUser string) []string {
	seen := make(map[string]bool)
	var participants []string
	for _, msg := range messages {
		if msg.Sender == "" || msg.Sender == mainUser || seen[msg.Sender] {
			continue
		}
		seen[msg.Sender] = true
		participants = append(participants, msg.Sender)
	}
	return participants
}
