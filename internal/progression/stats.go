package progression

import "github.com/easeaico/companion-house/internal/types"

// Defaults for stats missing from a record.
const (
	DefaultLove       = 0
	DefaultHappiness  = 50
	DefaultWet        = 0
	DefaultWilling    = 50
	DefaultSelfEsteem = 50
	DefaultLoyalty    = 50
	DefaultFight      = 20
	DefaultStamina    = 50
	DefaultPain       = 20
	DefaultExperience = 0
	DefaultLevel      = 1
)

// EnsureStats backfills missing fields with defaults and clamps every bounded field.
func EnsureStats(p *types.PartialStats) types.Stats {
	if p == nil {
		p = &types.PartialStats{}
	}
	return types.Stats{
		Love:       ClampStat(valueOr(p.Love, DefaultLove)),
		Happiness:  ClampStat(valueOr(p.Happiness, DefaultHappiness)),
		Wet:        ClampStat(valueOr(p.Wet, DefaultWet)),
		Willing:    ClampStat(valueOr(p.Willing, DefaultWilling)),
		SelfEsteem: ClampStat(valueOr(p.SelfEsteem, DefaultSelfEsteem)),
		Loyalty:    ClampStat(valueOr(p.Loyalty, DefaultLoyalty)),
		Fight:      ClampStat(valueOr(p.Fight, DefaultFight)),
		Stamina:    ClampStat(valueOr(p.Stamina, DefaultStamina)),
		Pain:       ClampStat(valueOr(p.Pain, DefaultPain)),
		Experience: valueOr(p.Experience, DefaultExperience),
		Level:      valueOr(p.Level, DefaultLevel),
	}
}

// NormalizeStats clamps an already complete stats block. A nil block yields the defaults.
func NormalizeStats(s *types.Stats) types.Stats {
	if s == nil {
		return EnsureStats(nil)
	}
	p := s.Partial()
	return EnsureStats(&p)
}

// ApplyStatsPatch overwrites the fields present in patch and clamps the result.
func ApplyStatsPatch(s types.Stats, patch types.PartialStats) types.Stats {
	merged := s.Partial()
	overlay(&merged.Love, patch.Love)
	overlay(&merged.Happiness, patch.Happiness)
	overlay(&merged.Wet, patch.Wet)
	overlay(&merged.Willing, patch.Willing)
	overlay(&merged.SelfEsteem, patch.SelfEsteem)
	overlay(&merged.Loyalty, patch.Loyalty)
	overlay(&merged.Fight, patch.Fight)
	overlay(&merged.Stamina, patch.Stamina)
	overlay(&merged.Pain, patch.Pain)
	overlay(&merged.Experience, patch.Experience)
	overlay(&merged.Level, patch.Level)
	return EnsureStats(&merged)
}

// EnsureSkills returns a clamped skill vector; a nil block is all zero.
func EnsureSkills(s *types.Skills) types.Skills {
	if s == nil {
		return types.Skills{}
	}
	return types.Skills{
		Hands:      ClampStat(s.Hands),
		Mouth:      ClampStat(s.Mouth),
		Missionary: ClampStat(s.Missionary),
		Doggy:      ClampStat(s.Doggy),
		Cowgirl:    ClampStat(s.Cowgirl),
	}
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func overlay(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
