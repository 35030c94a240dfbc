package memory

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/easeaico/companion-house/internal/types"
)

// relatedTerms maps a word found in a memory to context words that make it relevant.
var relatedTerms = map[string][]string{
	"love":     {"relationship", "feel", "feelings", "romance", "romantic", "together"},
	"kiss":     {"intimate", "romance", "romantic", "date"},
	"trust":    {"relationship", "secret", "honest", "promise"},
	"touch":    {"intimate", "bedroom", "sex", "closer"},
	"date":     {"dinner", "movie", "restaurant", "evening"},
	"work":     {"job", "office", "career", "boss"},
	"family":   {"mother", "father", "sister", "brother", "parents"},
	"birthday": {"gift", "party", "celebrate", "present"},
	"gift":     {"present", "birthday", "surprise"},
}

var stopWords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "have": {}, "from": {}, "they": {}, "what": {},
	"when": {}, "were": {}, "your": {}, "about": {}, "there": {}, "their": {}, "would": {},
	"user": {}, "very": {}, "just": {}, "been": {}, "into": {}, "more": {}, "during": {},
}

// MatchesContext reports whether a memory is relevant to the conversation topic.
// An empty topic matches everything.
func MatchesContext(mem types.CharacterMemory, topic string) bool {
	c := foldString(strings.TrimSpace(topic))
	if c == "" {
		return true
	}
	m := foldString(mem.Content)
	if m == "" {
		return false
	}
	if strings.Contains(m, c) || strings.Contains(c, m) {
		return true
	}

	memWords := significantWords(m)
	ctxWords := significantWords(c)
	for w := range memWords {
		if _, ok := ctxWords[w]; ok {
			return true
		}
	}
	for w := range memWords {
		for _, related := range relatedTerms[w] {
			if _, ok := ctxWords[related]; ok {
				return true
			}
		}
	}
	return false
}

// foldString case-folds s. Casers are stateful, so each call gets its own.
func foldString(s string) string {
	return cases.Fold().String(s)
}

func significantWords(s string) map[string]struct{} {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// RelevanceScore ranks memories by importance and then recency. Undated memories get no
// recency bonus.
func RelevanceScore(mem types.CharacterMemory) float64 {
	score := float64(mem.Importance.Weight())
	if !mem.Timestamp.IsZero() {
		score += float64(mem.Timestamp.Unix()) / 1e9
	}
	return score
}

// GetRelevantMemories returns at most limit memories matching topic, best first.
func (s *Service) GetRelevantMemories(ctx context.Context, characterID, topic string, limit int) ([]types.CharacterMemory, error) {
	if limit <= 0 {
		limit = defaultRecallLimit
	}
	character, err := s.loadCharacter(ctx, characterID)
	if err != nil || character == nil {
		return []types.CharacterMemory{}, err
	}

	matched := make([]types.CharacterMemory, 0, len(character.Memories))
	for _, mem := range character.Memories {
		if MatchesContext(mem, topic) {
			matched = append(matched, mem)
		}
	}
	slices.SortStableFunc(matched, func(a, b types.CharacterMemory) int {
		return cmp.Compare(RelevanceScore(b), RelevanceScore(a))
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

var categoryIcons = map[types.MemoryCategory]string{
	types.MemoryPersonal:     "👤",
	types.MemoryRelationship: "💕",
	types.MemorySexual:       "🔥",
	types.MemoryPreferences:  "⭐",
	types.MemoryEvents:       "📅",
}

// GetMemoryContext renders the most relevant memories as a prompt block, or "" when there
// are none.
func (s *Service) GetMemoryContext(ctx context.Context, characterID, topic string) string {
	memories, err := s.GetRelevantMemories(ctx, characterID, topic, s.contextLimit)
	if err != nil {
		slog.Warn("failed to load memory context", "character_id", characterID, "error", err.Error())
		return ""
	}
	if len(memories) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Important memories:")
	for _, mem := range memories {
		icon, ok := categoryIcons[mem.Category]
		if !ok {
			icon = "•"
		}
		sb.WriteString("\n")
		sb.WriteString(icon)
		sb.WriteString(" ")
		sb.WriteString(mem.Content)
	}
	return sb.String()
}
