package scoring

// NormalizeVotes maps votes onto 0-100 relative to maxVotes.
//
// maxVotes of zero yields 0 instead of dividing by zero; callers floor
// maxVotes at 1. The result is capped at MaxScore so a count above maxVotes
// cannot leave the range.
func NormalizeVotes(votes, maxVotes int) int {
	if maxVotes <= 0 || votes <= 0 {
		return 0
	}
	return min(MaxScore, divRoundHalfUp(votes*100, maxVotes))
}

// MaxVotes returns the largest vote count in votes, floored at 1.
func MaxVotes(votes ...int) int {
	m := 1
	for _, v := range votes {
		m = max(m, v)
	}
	return m
}
