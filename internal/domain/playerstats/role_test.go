package playerstats

import (
	"testing"
	"time"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
)

func standardRow(values map[string]string) stattable.Row {
	return stattable.NewRow(stattable.Key{Team: "Juventus", Player: "Michele Di Gregorio"}, values)
}

func TestIsGoalkeeper_KeeperTableDecides(t *testing.T) {
	t.Parallel()

	keeper := stattable.New(stattable.CategoryKeeper, time.Now(), []stattable.Row{
		stattable.NewRow(stattable.Key{Team: "Juventus", Player: "Michele Di Gregorio"}, nil),
	})

	if !IsGoalkeeper("Michele Di Gregorio", keeper, standardRow(map[string]string{stattable.ColGoals: "2"})) {
		t.Fatalf("keeper table row must win over the standard row")
	}
	// a non-empty keeper table without the player means outfield, even if the fallback would say otherwise
	silent := standardRow(map[string]string{stattable.ColMatchesPlayed: "30", stattable.ColMinutes: "2700"})
	if IsGoalkeeper("Gleison Bremer", keeper, silent) {
		t.Fatalf("fallback must not run when keeper table is loaded")
	}
}

func TestIsGoalkeeper_Fallback(t *testing.T) {
	t.Parallel()

	empty := stattable.Empty(stattable.CategoryKeeper)
	cases := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"full minutes no output", map[string]string{stattable.ColMatchesPlayed: "30", stattable.ColMinutes: "2700"}, true},
		{"scored", map[string]string{stattable.ColMatchesPlayed: "30", stattable.ColMinutes: "2700", stattable.ColGoals: "1"}, false},
		{"assisted", map[string]string{stattable.ColMatchesPlayed: "30", stattable.ColMinutes: "2700", stattable.ColAssists: "1"}, false},
		{"exactly 70 per match", map[string]string{stattable.ColMatchesPlayed: "10", stattable.ColMinutes: "700"}, false},
		{"zero matches counts as one", map[string]string{stattable.ColMatchesPlayed: "0", stattable.ColMinutes: "90"}, true},
		{"missing everything", map[string]string{}, false},
		{"garbage minutes", map[string]string{stattable.ColMinutes: "n/a"}, false},
	}
	for _, tc := range cases {
		if got := IsGoalkeeper("Michele Di Gregorio", empty, standardRow(tc.values)); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
