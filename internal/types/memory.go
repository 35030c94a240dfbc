package types

import "time"

// MemoryCategory groups memories by subject.
type MemoryCategory string

const (
	MemoryPersonal     MemoryCategory = "personal"
	MemoryRelationship MemoryCategory = "relationship"
	MemorySexual       MemoryCategory = "sexual"
	MemoryPreferences  MemoryCategory = "preferences"
	MemoryEvents       MemoryCategory = "events"
)

// Importance ranks memories; high memories survive the cap first.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Weight returns the ranking weight of the importance level.
func (i Importance) Weight() int {
	switch i {
	case ImportanceHigh:
		return 3
	case ImportanceMedium:
		return 2
	case ImportanceLow:
		return 1
	default:
		return 0
	}
}

// CharacterMemory is a fact a character remembers about its relationship with the user.
type CharacterMemory struct {
	ID             string         `json:"id"`
	Category       MemoryCategory `json:"category"`
	Content        string         `json:"content"`
	Importance     Importance     `json:"importance"`
	Timestamp      time.Time      `json:"timestamp"`
	ConversationID string         `json:"conversationId"`
	RelatedStats   map[string]int `json:"relatedStats,omitempty"`
}

// StatDelta is the change of the tracked stats over one conversation.
type StatDelta struct {
	Love  int `json:"love"`
	Wet   int `json:"wet"`
	Trust int `json:"trust"`
}

// ConversationSummary is the relationship summary written after a conversation goes idle.
type ConversationSummary struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	CharacterID         string    `json:"character_id"`
	Summary             string    `json:"summary"`
	KeyTopics           []string  `json:"key_topics"`
	EmotionalTone       string    `json:"emotional_tone"`
	RelationshipContext string    `json:"relationship_context"`
	MessageCount        int       `json:"message_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// SimilarMemory is a memory returned by vector search.
type SimilarMemory struct {
	MemoryID   string  `json:"memory_id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}
