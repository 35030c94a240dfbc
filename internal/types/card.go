package types

import "strings"

// CharacterCard is a community character card (V1 fields, or the data block of a V2 card).
type CharacterCard struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Personality  string `json:"personality"`
	Scenario     string `json:"scenario"`
	FirstMes     string `json:"first_mes"`
	MesExample   string `json:"mes_example"`
	CreatorNotes string `json:"creator_notes,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// CharacterCardV2 wraps the card under a data key.
type CharacterCardV2 struct {
	Spec string        `json:"spec"`
	Data CharacterCard `json:"data"`
}

// Character converts the card into a new, unsaved character.
func (c CharacterCard) Character() Character {
	return Character{
		Name:         c.Name,
		Description:  c.Description,
		Personality:  c.Personality,
		Scenario:     c.Scenario,
		FirstMessage: c.FirstMes,
	}
}

// WithPlaceholders returns the card with {{char}} and {{user}} filled in and the escaped
// newlines and quotes some card editors export turned back into text.
func (c CharacterCard) WithPlaceholders(userName string) CharacterCard {
	r := strings.NewReplacer(
		"{{char}}", c.Name,
		"{{user}}", userName,
		`\r\n`, "\n",
		`\n`, "\n",
		`\"`, `"`,
	)
	for _, field := range []*string{&c.Description, &c.Personality, &c.Scenario, &c.FirstMes, &c.MesExample} {
		*field = r.Replace(*field)
	}
	return c
}
