package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/easeaico/companion-house/internal/prompt"
	"github.com/easeaico/companion-house/internal/types"
	"github.com/easeaico/companion-house/internal/utils"
)

// Message-count heuristic used when the chat layer recorded no stat deltas.
const (
	loveMessageThreshold  = 5
	trustMessageThreshold = 8
	heuristicLoveDelta    = 15
	heuristicTrustDelta   = 12
)

// Deltas above these produce a memory.
const (
	loveMemoryThreshold  = 10
	wetMemoryThreshold   = 15
	trustMemoryThreshold = 10
	highImpactDelta      = 20
)

type analyzedMemory struct {
	Category    string `json:"category"`
	Importance  string `json:"importance"`
	Description string `json:"description"`
}

// AnalyzeConversationForMemories returns up to three memories character should keep from
// session. Model output comes first, stat-change memories after it.
func (s *Service) AnalyzeConversationForMemories(ctx context.Context, characterID string, session *types.ChatSession, character *types.Character) []types.CharacterMemory {
	if session == nil || character == nil {
		return []types.CharacterMemory{}
	}

	var userCount, charCount int
	relevant := make([]types.Message, 0, len(session.Messages))
	for _, m := range session.Messages {
		switch {
		case m.Role == types.RoleUser:
			userCount++
			relevant = append(relevant, m)
		case spokenBy(m, characterID, session.Kind):
			charCount++
			relevant = append(relevant, m)
		}
	}
	if userCount == 0 || charCount == 0 {
		return []types.CharacterMemory{}
	}

	memories := s.analyzeWithModel(ctx, session.ID, character, relevant)
	memories = append(memories, s.statMemories(session, characterID)...)
	if len(memories) > maxExtracted {
		memories = memories[:maxExtracted]
	}
	return memories
}

// spokenBy reports whether m was said by the character. One-on-one chats may leave the
// sender empty.
func spokenBy(m types.Message, characterID string, kind types.SessionKind) bool {
	if m.Role == types.RoleUser {
		return false
	}
	if m.SenderID == characterID {
		return true
	}
	return m.SenderID == "" && kind != types.SessionGroup
}

func (s *Service) analyzeWithModel(ctx context.Context, sessionID string, character *types.Character, messages []types.Message) []types.CharacterMemory {
	if s.llm == nil {
		return nil
	}
	text, err := prompt.BuildMemoryAnalysis(prompt.MemoryAnalysisInput{
		Character: character,
		Messages:  messages,
	})
	if err != nil {
		slog.Error("failed to build memory prompt", "character_id", character.ID, "error", err.Error())
		return nil
	}

	raw, err := s.llm.GenerateResponse(ctx, text)
	if err != nil {
		slog.Warn("memory analysis call failed", "character_id", character.ID, "error", err.Error())
		return nil
	}

	items, err := utils.ParseJSONList[analyzedMemory](raw, "memories")
	if err != nil {
		slog.Warn("failed to parse memory analysis", "character_id", character.ID, "error", err.Error())
		return nil
	}

	out := make([]types.CharacterMemory, 0, len(items))
	for _, item := range items {
		category, ok := parseCategory(item.Category)
		content := strings.TrimSpace(item.Description)
		if !ok || content == "" {
			slog.Debug("skipping malformed memory", "category", item.Category)
			continue
		}
		out = append(out, types.CharacterMemory{
			ID:             s.newID(),
			Category:       category,
			Content:        content,
			Importance:     parseImportance(item.Importance),
			Timestamp:      s.now(),
			ConversationID: sessionID,
		})
	}
	return out
}

// statMemories turns the conversation's stat changes into memories.
func (s *Service) statMemories(session *types.ChatSession, characterID string) []types.CharacterMemory {
	delta, tracked := session.StatChanges[characterID]
	if !tracked {
		delta = heuristicDelta(len(session.Messages))
	}

	var out []types.CharacterMemory
	add := func(category types.MemoryCategory, stat string, value int, content string) {
		importance := types.ImportanceMedium
		if value > highImpactDelta {
			importance = types.ImportanceHigh
		}
		out = append(out, types.CharacterMemory{
			ID:             s.newID(),
			Category:       category,
			Content:        content,
			Importance:     importance,
			Timestamp:      s.now(),
			ConversationID: session.ID,
			RelatedStats:   map[string]int{stat: value},
		})
	}

	if delta.Love > loveMemoryThreshold {
		add(types.MemoryRelationship, "love", delta.Love,
			fmt.Sprintf("Felt much closer to the user during this conversation (love +%d).", delta.Love))
	}
	if delta.Wet > wetMemoryThreshold {
		add(types.MemorySexual, "wet", delta.Wet,
			fmt.Sprintf("Felt strong desire for the user during this conversation (arousal +%d).", delta.Wet))
	}
	if delta.Trust > trustMemoryThreshold {
		add(types.MemoryRelationship, "trust", delta.Trust,
			fmt.Sprintf("Came to trust the user more after this conversation (trust +%d).", delta.Trust))
	}
	return out
}

func heuristicDelta(messageCount int) types.StatDelta {
	var d types.StatDelta
	if messageCount > loveMessageThreshold {
		d.Love = heuristicLoveDelta
	}
	if messageCount > trustMessageThreshold {
		d.Trust = heuristicTrustDelta
	}
	return d
}

func parseCategory(s string) (types.MemoryCategory, bool) {
	switch c := types.MemoryCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case types.MemoryPersonal, types.MemoryRelationship, types.MemorySexual, types.MemoryPreferences, types.MemoryEvents:
		return c, true
	default:
		return "", false
	}
}

// parseImportance defaults unknown levels to medium.
func parseImportance(s string) types.Importance {
	switch i := types.Importance(strings.ToLower(strings.TrimSpace(s))); i {
	case types.ImportanceLow, types.ImportanceMedium, types.ImportanceHigh:
		return i
	default:
		return types.ImportanceMedium
	}
}
