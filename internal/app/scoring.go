package app

import "math"

const (
	basePoints     = 1000
	maxSpeedBonus  = 500
	bonusDecayRate = 25 // points lost per second
)

// Score maps one answer to points. A correct answer earns 1000 plus a speed
// bonus that drops by 25 per second and reaches zero at 20 seconds.
//
// Negative elapsed times count as instant; NaN earns no bonus.
func Score(isCorrect bool, timeSpentSeconds float64) int {
	if !isCorrect {
		return 0
	}
	if timeSpentSeconds < 0 {
		timeSpentSeconds = 0
	}
	bonus := math.Max(0, maxSpeedBonus-timeSpentSeconds*bonusDecayRate)
	if math.IsNaN(bonus) {
		bonus = 0
	}
	return int(math.Round(basePoints + bonus))
}
