package prompt

import (
	"strings"
	"testing"

	"github.com/easeaico/companion-house/internal/types"
)

func TestTranscriptNamesSpeakers(t *testing.T) {
	got := Transcript([]types.Message{
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, SenderID: "c1", Content: " hello there "},
		{Role: types.RoleAssistant, SenderID: "c9", Content: "who?"},
	}, map[string]string{"c1": "Luna"})

	want := "User: hi\nLuna: hello there\nCharacter: who?"
	if got != want {
		t.Fatalf("unexpected transcript:\n%s", got)
	}
}

func TestBuildMemoryAnalysis(t *testing.T) {
	got, err := BuildMemoryAnalysis(MemoryAnalysisInput{
		Character: &types.Character{ID: "c1", Name: "Luna", Personality: "playful"},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: "I love hiking"},
			{Role: types.RoleAssistant, SenderID: "c1", Content: "Take me with you"},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"Luna: Take me with you", "User: I love hiking", "Personality: playful", "JSON array"} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildMemoryAnalysisRequiresCharacter(t *testing.T) {
	if _, err := BuildMemoryAnalysis(MemoryAnalysisInput{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildRelationshipSummary(t *testing.T) {
	got, err := BuildRelationshipSummary(RelationshipSummaryInput{
		Character: &types.Character{ID: "c1", Name: "Luna", Progression: &types.Progression{
			Affection: 60, Trust: 55, Intimacy: 50, RelationshipStatus: types.StatusCloseFriend,
		}},
		Session: &types.ChatSession{Messages: []types.Message{
			{Role: types.RoleUser, Content: "good morning"},
		}},
		PreviousSummaries: []string{"They went to the beach."},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"Relationship status: close_friend", "Affection 60/100", "- They went to the beach.", "(1 messages)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
}
