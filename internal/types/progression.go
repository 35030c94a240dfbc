package types

import "time"

// RelationshipStatus is derived from the averaged affection, trust and intimacy.
type RelationshipStatus string

const (
	StatusStranger     RelationshipStatus = "stranger"
	StatusAcquaintance RelationshipStatus = "acquaintance"
	StatusCloseFriend  RelationshipStatus = "close_friend"
	StatusLover        RelationshipStatus = "lover"
	StatusDevoted      RelationshipStatus = "devoted"
)

// Progression is the relationship and intimacy state layered on top of Stats.
type Progression struct {
	Affection      int `json:"affection"`
	Trust          int `json:"trust"`
	Intimacy       int `json:"intimacy"`
	Dominance      int `json:"dominance"`
	Jealousy       int `json:"jealousy"`
	Possessiveness int `json:"possessiveness"`
	// SexualExperience only ever grows.
	SexualExperience int `json:"sexualExperience"`

	RelationshipStatus RelationshipStatus `json:"relationshipStatus"`

	Kinks             []string `json:"kinks"`
	Limits            []string `json:"limits"`
	Fantasies         []string `json:"fantasies"`
	UnlockedPositions []string `json:"unlockedPositions"`
	UnlockedScenarios []string `json:"unlockedScenarios"`
	UnlockedOutfits   []string `json:"unlockedOutfits"`

	RelationshipMilestones []string          `json:"relationshipMilestones"`
	SexualMilestones       []SexualMilestone `json:"sexualMilestones"`

	SignificantEvents []RelationshipEvent `json:"significantEvents"`
	MemorableEvents   []SexualEvent       `json:"memorableEvents"`
	StoryChronicle    []ChronicleEntry    `json:"storyChronicle"`

	Bonds               map[string]Bond     `json:"bonds"`
	SexualCompatibility SexualCompatibility `json:"sexualCompatibility"`
	UserPreferences     UserPreferences     `json:"userPreferences"`
}

// Bond describes how a character feels about another character in the house.
type Bond struct {
	Strength int    `json:"strength"`
	Type     string `json:"type"`
}

// SexualCompatibility summarises how well the character and the user match.
type SexualCompatibility struct {
	Overall         int      `json:"overall"`
	SharedInterests []string `json:"sharedInterests"`
	Conflicts       []string `json:"conflicts"`
}

// UserPreferences are what the character has learned about the user.
type UserPreferences struct {
	Likes      []string `json:"likes"`
	Dislikes   []string `json:"dislikes"`
	Boundaries []string `json:"boundaries"`
}

// RelationshipEvent is an immutable entry of the significant-events log.
type RelationshipEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Impact      int       `json:"impact"`
}

// SexualEvent is an immutable entry of the memorable-events log.
type SexualEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Impact      int       `json:"impact"`
}

// EventInput is an event before the engine stamps it with an id and timestamp.
type EventInput struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      int    `json:"impact"`
}

// Relationship event types with a built-in stat effect.
const (
	EventTrustGain     = "trust_gain"
	EventAffectionGain = "affection_gain"
	EventIntimate      = "intimate"
	EventGift          = "gift"
)

// ChronicleEntry is one chapter of the character's story.
type ChronicleEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SessionID string    `json:"sessionId,omitempty"`
}

// ChronicleInput is a chronicle entry before it is stamped.
type ChronicleInput struct {
	Title     string
	Content   string
	SessionID string
}

// SexualMilestone is a one-time progression gate.
type SexualMilestone struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Achieved    bool       `json:"achieved"`
	AchievedAt  *time.Time `json:"achievedAt,omitempty"`
	// RequiredStats maps a stat or progression field name to its minimum value.
	RequiredStats map[string]int `json:"requiredStats"`
	Rewards       []string       `json:"rewards"`
}

// RelationshipUpdate names the progression metrics to overwrite; nil fields are left untouched.
type RelationshipUpdate struct {
	Affection        *int `json:"affection,omitempty"`
	Trust            *int `json:"trust,omitempty"`
	Intimacy         *int `json:"intimacy,omitempty"`
	Dominance        *int `json:"dominance,omitempty"`
	Jealousy         *int `json:"jealousy,omitempty"`
	Possessiveness   *int `json:"possessiveness,omitempty"`
	SexualExperience *int `json:"sexualExperience,omitempty"`
}
