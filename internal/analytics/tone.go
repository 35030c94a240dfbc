package analytics

import (
	"strings"

	"github.com/easeaico/companion-house/internal/dynamics"
	"github.com/easeaico/companion-house/internal/types"
)

var (
	strongPositiveKeywords = []string{
		"love you",
		"adore you",
		"miss you",
		"爱你",
		"想你",
	}
	positiveKeywords = []string{
		"thank you",
		"thanks",
		"great",
		"sweet",
		"beautiful",
		"happy",
		"喜欢",
		"开心",
		"谢谢",
	}
	negativeKeywords = []string{
		"annoy",
		"upset",
		"sad",
		"boring",
		"disappointed",
		"失望",
		"难过",
		"生气",
	}
	strongNegativeKeywords = []string{
		"hate you",
		"shut up",
		"leave me alone",
		"讨厌你",
		"闭嘴",
	}
)

// KeywordTone classifies a conversation from the user's wording when the model gave no tone.
func KeywordTone(messages []types.Message) dynamics.Tone {
	score := 0
	for _, m := range messages {
		if m.Role == types.RoleUser {
			score += keywordScore(m.Content)
		}
	}
	switch {
	case score > 0:
		return dynamics.TonePositive
	case score < 0:
		return dynamics.ToneNegative
	default:
		return dynamics.ToneNeutral
	}
}

func keywordScore(text string) int {
	lowered := strings.ToLower(text)
	delta := 0
	if containsAny(lowered, strongPositiveKeywords) {
		delta += 3
	}
	if containsAny(lowered, positiveKeywords) {
		delta += 2
	}
	if containsAny(lowered, negativeKeywords) {
		delta -= 2
	}
	if containsAny(lowered, strongNegativeKeywords) {
		delta -= 3
	}
	return delta
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
