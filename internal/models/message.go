package models

// Message roles in the transcript.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// SeedMessageID identifies the fixed greeting that opens every conversation.
const SeedMessageID = "init-1"

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Text string `json:"text"`
}

// SeedMessage returns the greeting that opens a fresh conversation.
func SeedMessage() ChatMessage {
	return ChatMessage{
		ID:   SeedMessageID,
		Role: RoleModel,
		Text: "Hi! I'm your AI strategist and I'm here to help you build a detailed Ideal Customer Profile. " +
			"First, tell me about your product or service - what do you offer and who do you help?",
	}
}

// NewTranscript returns a transcript holding only the seed message.
func NewTranscript() []ChatMessage {
	return []ChatMessage{SeedMessage()}
}

// IsSeed reports whether m is the seed message.
func (m ChatMessage) IsSeed() bool {
	return m.ID == SeedMessageID
}
