package playerstats

import (
	"fmt"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
)

const reliableMatches = 15

// BuildGeneral reads the general block from a standard table row.
func BuildGeneral(row stattable.Row) GeneralStats {
	return GeneralStats{
		MatchesPlayed: row.Int(stattable.ColMatchesPlayed, 0),
		Minutes:       row.Int(stattable.ColMinutes, 0),
		Goals:         row.Int(stattable.ColGoals, 0),
		Assists:       row.Int(stattable.ColAssists, 0),
		YellowCards:   row.Int(stattable.ColYellowCards, 0),
		RedCards:      row.Int(stattable.ColRedCards, 0),
	}
}

func BuildPassing(row stattable.Row) *PassingStats {
	return &PassingStats{
		Attempted:  row.Int(stattable.ColPassesAttempted, 0),
		Completion: stattable.Round1(row.Number(stattable.ColPassCompletion, 0)),
	}
}

func BuildKeeper(row stattable.Row) *KeeperStats {
	return &KeeperStats{
		MatchesPlayed:  row.Int(stattable.ColKeeperMatches, 0),
		GoalsConceded:  row.Int(stattable.ColKeeperGoalsAgainst, 0),
		Saves:          row.Int(stattable.ColKeeperSaves, 0),
		SavePct:        stattable.Round1(row.Number(stattable.ColKeeperSavePct, 0)),
		CleanSheets:    row.Int(stattable.ColKeeperCleanSheets, 0),
		CleanSheetsPct: stattable.Round1(row.Number(stattable.ColKeeperCleanSheetsPct, 0)),
	}
}

// BuildInsights derives the fantasy block. When keeper stats are present the
// rating and bonus/malus come from clean sheets and goals conceded instead.
func BuildInsights(general GeneralStats, keeper *KeeperStats, source string) Insights {
	contribution := general.Goals + general.Assists

	insights := Insights{
		EstimatedRating: stattable.Round1(6.0 + float64(contribution)*0.1),
		BonusMalus:      stattable.Round1(float64(general.Goals)*3 + float64(general.Assists) - float64(general.YellowCards)*0.5),
		Reliability:     ReliabilityMedium,
		Trend:           TrendStable,
		Advice: []string{
			fmt.Sprintf("Ha giocato %d partite", general.MatchesPlayed),
			fmt.Sprintf("Contributo gol+assist: %d", contribution),
			"Dati reali " + source,
		},
	}
	if general.MatchesPlayed > reliableMatches {
		insights.Reliability = ReliabilityHigh
	}

	if keeper != nil {
		insights.EstimatedRating = stattable.Round1(6.0 + float64(keeper.CleanSheets)*0.1 - float64(keeper.GoalsConceded)*0.05)
		insights.BonusMalus = stattable.Round1(float64(keeper.CleanSheets - keeper.GoalsConceded))
		insights.Role = RoleGoalkeeper
		insights.Advice = []string{
			fmt.Sprintf("Portiere con %d clean sheets", keeper.CleanSheets),
			fmt.Sprintf("Parate: %d", keeper.Saves),
			"Dati reali " + source,
		}
	}

	return insights
}
