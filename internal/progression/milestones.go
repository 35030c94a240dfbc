package progression

import "github.com/easeaico/companion-house/internal/types"

// Seeded milestone ids.
const (
	MilestoneFirstKiss          = "first_kiss"
	MilestoneFirstIntimateTouch = "first_intimate_touch"
	MilestoneFirstTime          = "first_time"
)

// DefaultMilestones returns the fixed seed set, none achieved.
func DefaultMilestones() []types.SexualMilestone {
	return []types.SexualMilestone{
		{
			ID:          MilestoneFirstKiss,
			Name:        "First Kiss",
			Description: "Share a first kiss.",
			RequiredStats: map[string]int{
				"affection": 30,
				"trust":     25,
			},
			Rewards: []string{"kissing", "cuddling"},
		},
		{
			ID:          MilestoneFirstIntimateTouch,
			Name:        "First Intimate Touch",
			Description: "Become comfortable with intimate touch.",
			RequiredStats: map[string]int{
				"affection": 50,
				"trust":     45,
				"intimacy":  30,
			},
			Rewards: []string{"intimate_touching", "massage"},
		},
		{
			ID:          MilestoneFirstTime,
			Name:        "First Time",
			Description: "Spend the first night together.",
			RequiredStats: map[string]int{
				"affection": 70,
				"trust":     65,
				"intimacy":  60,
				"willing":   60,
			},
			Rewards: []string{"bedroom", "lingerie"},
		},
	}
}

// StatValue looks up a stat or progression metric by its JSON name.
func StatValue(name string, s types.Stats, p types.Progression) (int, bool) {
	switch name {
	case "love":
		return s.Love, true
	case "happiness":
		return s.Happiness, true
	case "wet":
		return s.Wet, true
	case "willing":
		return s.Willing, true
	case "selfEsteem":
		return s.SelfEsteem, true
	case "loyalty":
		return s.Loyalty, true
	case "fight":
		return s.Fight, true
	case "stamina":
		return s.Stamina, true
	case "pain":
		return s.Pain, true
	case "experience":
		return s.Experience, true
	case "level":
		return s.Level, true
	case "affection":
		return p.Affection, true
	case "trust":
		return p.Trust, true
	case "intimacy":
		return p.Intimacy, true
	case "dominance":
		return p.Dominance, true
	case "jealousy":
		return p.Jealousy, true
	case "possessiveness":
		return p.Possessiveness, true
	case "sexualExperience":
		return p.SexualExperience, true
	default:
		return 0, false
	}
}

// MilestoneMet reports whether every threshold of m is reached. Unknown stat names never match.
func MilestoneMet(m types.SexualMilestone, s types.Stats, p types.Progression) bool {
	for name, required := range m.RequiredStats {
		value, ok := StatValue(name, s, p)
		if !ok || value < required {
			return false
		}
	}
	return true
}
