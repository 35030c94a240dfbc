// Package types holds the domain records shared by the engines and the storage layer.
package types

import "time"

// Character is an AI companion and the aggregate root of its relationship state.
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Personality string `json:"personality"`
	Appearance  string `json:"appearance"`
	Scenario    string `json:"scenario"`
	// FirstMessage is the greeting used when a new chat starts.
	FirstMessage string `json:"first_message"`

	Stats       *Stats       `json:"stats,omitempty"`
	Progression *Progression `json:"progression,omitempty"`
	Skills      *Skills      `json:"skills,omitempty"`

	// Memories is kept sorted by importance then recency and capped by the memory service.
	Memories            []CharacterMemory `json:"memories"`
	ConversationHistory []Message         `json:"conversation_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats are the bounded per-character attributes. Experience and Level are unbounded.
type Stats struct {
	Love       int `json:"love"`
	Happiness  int `json:"happiness"`
	Wet        int `json:"wet"`
	Willing    int `json:"willing"`
	SelfEsteem int `json:"selfEsteem"`
	Loyalty    int `json:"loyalty"`
	Fight      int `json:"fight"`
	Stamina    int `json:"stamina"`
	Pain       int `json:"pain"`
	Experience int `json:"experience"`
	Level      int `json:"level"`
}

// Partial returns a PartialStats with every field set.
func (s Stats) Partial() PartialStats {
	return PartialStats{
		Love:       intPtr(s.Love),
		Happiness:  intPtr(s.Happiness),
		Wet:        intPtr(s.Wet),
		Willing:    intPtr(s.Willing),
		SelfEsteem: intPtr(s.SelfEsteem),
		Loyalty:    intPtr(s.Loyalty),
		Fight:      intPtr(s.Fight),
		Stamina:    intPtr(s.Stamina),
		Pain:       intPtr(s.Pain),
		Experience: intPtr(s.Experience),
		Level:      intPtr(s.Level),
	}
}

// PartialStats is a stats record where any field may be missing, as found in legacy
// records or stat patches.
type PartialStats struct {
	Love       *int `json:"love,omitempty"`
	Happiness  *int `json:"happiness,omitempty"`
	Wet        *int `json:"wet,omitempty"`
	Willing    *int `json:"willing,omitempty"`
	SelfEsteem *int `json:"selfEsteem,omitempty"`
	Loyalty    *int `json:"loyalty,omitempty"`
	Fight      *int `json:"fight,omitempty"`
	Stamina    *int `json:"stamina,omitempty"`
	Pain       *int `json:"pain,omitempty"`
	Experience *int `json:"experience,omitempty"`
	Level      *int `json:"level,omitempty"`
}

// Skills is the fixed skill vector, each value in [0,100].
type Skills struct {
	Hands      int `json:"hands"`
	Mouth      int `json:"mouth"`
	Missionary int `json:"missionary"`
	Doggy      int `json:"doggy"`
	Cowgirl    int `json:"cowgirl"`
}

// SkillUpdate names the skills to overwrite; nil fields are left untouched.
type SkillUpdate struct {
	Hands      *int `json:"hands,omitempty"`
	Mouth      *int `json:"mouth,omitempty"`
	Missionary *int `json:"missionary,omitempty"`
	Doggy      *int `json:"doggy,omitempty"`
	Cowgirl    *int `json:"cowgirl,omitempty"`
}

// Gift is something the user hands to a character.
type Gift struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    int    `json:"value"`
}

func intPtr(v int) *int {
	return &v
}

// IntPtr is a convenience for building optional updates.
func IntPtr(v int) *int {
	return intPtr(v)
}
