package stattable

// Column names follow the FBref data-stat attributes.
const (
	ColMatchesPlayed = "games"
	ColMinutes       = "minutes"
	ColGoals         = "goals"
	ColAssists       = "assists"
	ColYellowCards   = "cards_yellow"
	ColRedCards      = "cards_red"

	ColPassesAttempted = "passes"
	ColPassCompletion  = "passes_pct"

	ColKeeperMatches        = "gk_games"
	ColKeeperGoalsAgainst   = "gk_goals_against"
	ColKeeperSaves          = "gk_saves"
	ColKeeperSavePct        = "gk_save_pct"
	ColKeeperCleanSheets    = "gk_clean_sheets"
	ColKeeperCleanSheetsPct = "gk_clean_sheets_pct"
)
