// Package progression defines the bounded stat model and the relationship progression defaults.
package progression

const (
	StatMin = 0
	StatMax = 100
)

// Clamp bounds n to [min,max].
func Clamp(n, min, max int) int {
	switch {
	case n < min:
		return min
	case n > max:
		return max
	default:
		return n
	}
}

// ClampStat bounds n to the stat range.
func ClampStat(n int) int {
	return Clamp(n, StatMin, StatMax)
}
