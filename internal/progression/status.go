package progression

import "github.com/easeaico/companion-house/internal/types"

// StatusForScore maps an averaged relationship score to its band.
// A boundary value belongs to the higher band.
func StatusForScore(score float64) types.RelationshipStatus {
	switch {
	case score >= 90:
		return types.StatusDevoted
	case score >= 75:
		return types.StatusLover
	case score >= 55:
		return types.StatusCloseFriend
	case score >= 30:
		return types.StatusAcquaintance
	default:
		return types.StatusStranger
	}
}

// RelationshipScore is the mean of affection, trust and intimacy.
func RelationshipScore(p types.Progression) float64 {
	return float64(p.Affection+p.Trust+p.Intimacy) / 3
}

// DeriveStatus is the only source of the relationship status.
func DeriveStatus(p types.Progression) types.RelationshipStatus {
	return StatusForScore(RelationshipScore(p))
}
