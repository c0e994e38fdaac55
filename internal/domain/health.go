package domain

// Health score bounds and adjustment rules. The rules are independent
// additive adjustments; clamping happens once after all of them.
const (
	MinHealthScore = 0
	MaxHealthScore = 100

	// DefaultHealthyThreshold is the score at or above which a project is
	// considered healthy.
	DefaultHealthyThreshold = 80

	dirtyPenalty     = 10
	untrackedPenalty = 5
	untrackedLimit   = 5
	cleanBonus       = 5
)

// AdjustHealthScore applies git-derived penalties and bonuses to a
// project's baseline score and clamps the result to [0, 100]. A nil git
// state leaves the baseline unchanged.
func AdjustHealthScore(base int, git *GitState) int {
	if git == nil {
		return base
	}

	score := base
	if git.IsDirty {
		score -= dirtyPenalty
	}
	if len(git.UntrackedFiles) > untrackedLimit {
		score -= untrackedPenalty
	}
	if git.IsClean() {
		score += cleanBonus
	}

	return clampScore(score)
}

func clampScore(score int) int {
	if score < MinHealthScore {
		return MinHealthScore
	}
	if score > MaxHealthScore {
		return MaxHealthScore
	}
	return score
}
