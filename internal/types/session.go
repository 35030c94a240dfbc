package types

import "time"

// SessionKind tells one-on-one chats from group chats.
type SessionKind string

const (
	SessionIndividual SessionKind = "individual"
	SessionGroup      SessionKind = "group"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat line. For assistant messages SenderID is the speaking character.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is a conversation between the user and one or more characters.
type ChatSession struct {
	ID           string      `json:"id"`
	Kind         SessionKind `json:"kind"`
	Participants []string    `json:"participants"`
	Messages     []Message   `json:"messages"`
	// StatChanges holds tracked stat deltas per character when the chat layer records them.
	StatChanges map[string]StatDelta `json:"stat_changes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// LastMessageAt returns the timestamp of the most recent message.
func (s *ChatSession) LastMessageAt() (time.Time, bool) {
	if s == nil || len(s.Messages) == 0 {
		return time.Time{}, false
	}
	last := s.Messages[0].Timestamp
	for _, m := range s.Messages[1:] {
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	return last, true
}
