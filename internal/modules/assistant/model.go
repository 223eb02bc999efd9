// README: Conversation turns, fixed replies, and assistant errors.
package assistant

import (
	"errors"
	"time"
)

var (
	// ErrEmptyMessage is returned before any model call when the message is blank.
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSessionNotFound = errors.New("session not found")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation. Failed marks an apology recorded
// after generation failed; such pairs are kept for audit but never replayed.
type Turn struct {
	Role   Role      `json:"role"`
	Text   string    `json:"text"`
	Failed bool      `json:"failed,omitempty"`
	At     time.Time `json:"at"`
}

const (
	Greeting = "Hi! I'm your travel assistant. Tell me where you'd like to go, or ask me anything about planning your trip."

	ApologyReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

	// UnavailableReply is returned when no model credential is configured.
	UnavailableReply = "The travel assistant is currently unavailable. Please try again later."

	// ClarificationReply is shown to callers that submit an empty message.
	ClarificationReply = "Please type a message so I can help with your trip."
)

// DefaultWindow is the number of turns (user and assistant) kept after the greeting.
const DefaultWindow = 40
