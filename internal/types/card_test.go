package types

import "testing"

func TestCardWithPlaceholders(t *testing.T) {
	card := CharacterCard{
		Name:        "Luna",
		Description: `{{char}} lives by the lake.\nShe says \"hi\".`,
		FirstMes:    "{{char}} waves at {{user}}.",
	}

	got := card.WithPlaceholders("Alex")
	if got.Description != "Luna lives by the lake.\nShe says \"hi\"." {
		t.Fatalf("unexpected description: %q", got.Description)
	}
	if got.FirstMes != "Luna waves at Alex." {
		t.Fatalf("unexpected first message: %q", got.FirstMes)
	}
	if card.FirstMes != "{{char}} waves at {{user}}." {
		t.Fatalf("original card was modified")
	}
}
