// Package prompt renders the prompts sent to the language model.
package prompt

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/easeaico/companion-house/internal/types"
)

const userLabel = "User"

// Transcript renders messages as "Name: text" lines. Messages from other characters keep
// their speaker name when names has it.
func Transcript(messages []types.Message, names map[string]string) string {
	var sb strings.Builder
	for _, m := range messages {
		speaker := userLabel
		if m.Role != types.RoleUser {
			speaker = names[m.SenderID]
			if speaker == "" {
				speaker = "Character"
			}
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// MemoryAnalysisInput feeds BuildMemoryAnalysis.
type MemoryAnalysisInput struct {
	Character *types.Character
	Messages  []types.Message
}

// BuildMemoryAnalysis renders the memory extraction prompt.
func BuildMemoryAnalysis(in MemoryAnalysisInput) (string, error) {
	if in.Character == nil {
		return "", fmt.Errorf("character is required")
	}
	data := struct {
		CharacterName string
		Personality   string
		Transcript    string
	}{
		CharacterName: in.Character.Name,
		Personality:   in.Character.Personality,
		Transcript:    Transcript(in.Messages, map[string]string{in.Character.ID: in.Character.Name}),
	}

	var buf bytes.Buffer
	if err := memoryAnalysisTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build memory analysis prompt: %w", err)
	}
	return buf.String(), nil
}

// RelationshipSummaryInput feeds BuildRelationshipSummary.
type RelationshipSummaryInput struct {
	Character         *types.Character
	Session           *types.ChatSession
	Names             map[string]string
	PreviousSummaries []string
}

// BuildRelationshipSummary renders the per-character conversation summary prompt.
func BuildRelationshipSummary(in RelationshipSummaryInput) (string, error) {
	if in.Character == nil || in.Session == nil {
		return "", fmt.Errorf("character and session are required")
	}
	var prog types.Progression
	if in.Character.Progression != nil {
		prog = *in.Character.Progression
	}
	status := prog.RelationshipStatus
	if status == "" {
		status = types.StatusStranger
	}

	names := maps.Clone(in.Names)
	if names == nil {
		names = map[string]string{}
	}
	if _, ok := names[in.Character.ID]; !ok {
		names[in.Character.ID] = in.Character.Name
	}

	data := struct {
		CharacterName     string
		Status            types.RelationshipStatus
		Affection         int
		Trust             int
		Intimacy          int
		PreviousSummaries []string
		MessageCount      int
		Transcript        string
	}{
		CharacterName:     in.Character.Name,
		Status:            status,
		Affection:         prog.Affection,
		Trust:             prog.Trust,
		Intimacy:          prog.Intimacy,
		PreviousSummaries: in.PreviousSummaries,
		MessageCount:      len(in.Session.Messages),
		Transcript:        Transcript(in.Session.Messages, names),
	}

	var buf bytes.Buffer
	if err := relationshipSummaryTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build relationship summary prompt: %w", err)
	}
	return buf.String(), nil
}
