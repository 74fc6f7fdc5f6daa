package playerstats

import (
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
)

const keeperMinutesPerMatch = 70

// IsGoalkeeper reports whether fullName plays in goal. Any row in the keeper
// table settles it. Only when that table is empty does the standard row
// decide: no goals, no assists, and more than 70 minutes per match.
func IsGoalkeeper(fullName string, keeper stattable.Table, standard stattable.Row) bool {
	if !keeper.IsEmpty() {
		return keeper.Has(fullName)
	}

	goals := standard.Number(stattable.ColGoals, 0)
	assists := standard.Number(stattable.ColAssists, 0)
	minutes := standard.Number(stattable.ColMinutes, 0)
	matches := standard.Number(stattable.ColMatchesPlayed, 1)
	if matches == 0 {
		matches = 1
	}

	return goals == 0 && assists == 0 && minutes/matches > keeperMinutesPerMatch
}
