package types

import "time"

// House is the roster of characters plus the rooms they live in.
type House struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Rooms      []Room      `json:"rooms"`
	Characters []Character `json:"characters"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Room references its residents by character id.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Residents []string `json:"residents"`
}

// DuplicateGroup reports the resolution of one duplicated name.
type DuplicateGroup struct {
	Name              string      `json:"name"`
	Characters        []Character `json:"characters"`
	KeptCharacter     Character   `json:"kept_character"`
	RemovedCharacters []Character `json:"removed_characters"`
}

// DuplicateCleanupResult reports what a duplicate cleanup removed and kept.
type DuplicateCleanupResult struct {
	RemovedCount    int              `json:"removed_count"`
	KeptCount       int              `json:"kept_count"`
	DuplicateGroups []DuplicateGroup `json:"duplicate_groups"`
}
