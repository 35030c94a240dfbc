package progression

import (
	"maps"
	"slices"

	"github.com/easeaico/companion-house/internal/types"
)

// EnsureProgression backfills a possibly partial progression block. Collections are never nil
// in the result, bounded metrics are clamped and the relationship status is recomputed.
// The input is not modified.
func EnsureProgression(p *types.Progression) types.Progression {
	if p == nil {
		p = &types.Progression{}
	}

	out := types.Progression{
		Affection:        ClampStat(p.Affection),
		Trust:            ClampStat(p.Trust),
		Intimacy:         ClampStat(p.Intimacy),
		Dominance:        ClampStat(p.Dominance),
		Jealousy:         ClampStat(p.Jealousy),
		Possessiveness:   ClampStat(p.Possessiveness),
		SexualExperience: max(p.SexualExperience, 0),

		Kinks:             cloneStrings(p.Kinks),
		Limits:            cloneStrings(p.Limits),
		Fantasies:         cloneStrings(p.Fantasies),
		UnlockedPositions: cloneStrings(p.UnlockedPositions),
		UnlockedScenarios: cloneStrings(p.UnlockedScenarios),
		UnlockedOutfits:   cloneStrings(p.UnlockedOutfits),

		RelationshipMilestones: cloneStrings(p.RelationshipMilestones),
		SexualMilestones:       cloneMilestones(p.SexualMilestones),

		SignificantEvents: cloneOrEmpty(p.SignificantEvents),
		MemorableEvents:   cloneOrEmpty(p.MemorableEvents),
		StoryChronicle:    cloneOrEmpty(p.StoryChronicle),

		Bonds: maps.Clone(p.Bonds),
		SexualCompatibility: types.SexualCompatibility{
			Overall:         ClampStat(p.SexualCompatibility.Overall),
			SharedInterests: cloneStrings(p.SexualCompatibility.SharedInterests),
			Conflicts:       cloneStrings(p.SexualCompatibility.Conflicts),
		},
		UserPreferences: types.UserPreferences{
			Likes:      cloneStrings(p.UserPreferences.Likes),
			Dislikes:   cloneStrings(p.UserPreferences.Dislikes),
			Boundaries: cloneStrings(p.UserPreferences.Boundaries),
		},
	}
	if out.Bonds == nil {
		out.Bonds = map[string]types.Bond{}
	}
	for id, bond := range out.Bonds {
		bond.Strength = ClampStat(bond.Strength)
		out.Bonds[id] = bond
	}
	out.RelationshipStatus = DeriveStatus(out)
	return out
}

// ApplyRelationshipUpdate overwrites the metrics present in upd, clamping each one.
// SexualExperience never decreases.
func ApplyRelationshipUpdate(p *types.Progression, upd types.RelationshipUpdate) {
	if upd.Affection != nil {
		p.Affection = ClampStat(*upd.Affection)
	}
	if upd.Trust != nil {
		p.Trust = ClampStat(*upd.Trust)
	}
	if upd.Intimacy != nil {
		p.Intimacy = ClampStat(*upd.Intimacy)
	}
	if upd.Dominance != nil {
		p.Dominance = ClampStat(*upd.Dominance)
	}
	if upd.Jealousy != nil {
		p.Jealousy = ClampStat(*upd.Jealousy)
	}
	if upd.Possessiveness != nil {
		p.Possessiveness = ClampStat(*upd.Possessiveness)
	}
	if upd.SexualExperience != nil && *upd.SexualExperience > p.SexualExperience {
		p.SexualExperience = *upd.SexualExperience
	}
}

// AddTag appends tag unless it is already present.
func AddTag(tags []string, tag string) []string {
	if tag == "" || slices.Contains(tags, tag) {
		return tags
	}
	return append(tags, tag)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

func cloneOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}

func cloneMilestones(in []types.SexualMilestone) []types.SexualMilestone {
	out := make([]types.SexualMilestone, 0, len(in))
	for _, m := range in {
		m.RequiredStats = maps.Clone(m.RequiredStats)
		if m.RequiredStats == nil {
			m.RequiredStats = map[string]int{}
		}
		m.Rewards = cloneStrings(m.Rewards)
		out = append(out, m)
	}
	return out
}
