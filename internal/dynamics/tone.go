package dynamics

import (
	"context"
	"strings"

	"github.com/easeaico/companion-house/internal/progression"
	"github.com/easeaico/companion-house/internal/types"
)

// Tone is the overall sentiment of a conversation.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// ParseTone maps free-form model output to a Tone. Unknown values are neutral.
func ParseTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case TonePositive:
		return TonePositive
	case ToneNegative:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// applyTone moves affection and happiness for one conversation.
func applyTone(stats *types.Stats, prog *types.Progression, tone Tone) {
	switch tone {
	case TonePositive:
		prog.Affection += 5
		stats.Happiness += 5
	case ToneNegative:
		prog.Affection -= 10
		stats.Happiness -= 10
	default:
		prog.Affection += 1
	}
	prog.Affection = progression.ClampStat(prog.Affection)
	stats.Happiness = progression.ClampStat(stats.Happiness)
}

// ApplyConversationTone nudges the relationship after a finished conversation.
func (e *Engine) ApplyConversationTone(ctx context.Context, id string, tone Tone) error {
	return e.mutate(ctx, id, func(_ *types.Character, stats *types.Stats, prog *types.Progression) {
		applyTone(stats, prog, tone)
	})
}
