package playeridentity

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
)

const (
	acceptThreshold    = 80
	teamBonusThreshold = 60

	substringBonus = 30
	tokenPairBonus = 20
	teamBonus      = 40
	minTokenRunes  = 3
)

// Identity is a resolved player: the key of the player's first row in the
// table plus the name used to find the player in other categories.
type Identity struct {
	Key      stattable.Key
	FullName string
}

// Candidate is a scored player name.
type Candidate struct {
	Name  string
	Score int
}

type Matcher struct {
	normalizer *Normalizer
}

func NewMatcher(normalizer *Normalizer) *Matcher {
	return &Matcher{normalizer: normalizer}
}

func (m *Matcher) Normalizer() *Normalizer {
	return m.normalizer
}

// Resolve picks the best scoring player in table. A candidate replaces the
// current best only when it scores strictly higher and above the accept
// threshold, so ties keep the earlier player.
func (m *Matcher) Resolve(rawName, teamHint string, table stattable.Table) (Identity, bool) {
	normalized := m.normalizer.Normalize(rawName)
	hint := canonical(teamHint)

	bestScore := 0
	bestName := ""
	for _, player := range table.Players() {
		score := m.score(normalized, player, hint, table)
		if score > bestScore && score > acceptThreshold {
			bestScore = score
			bestName = player
		}
	}
	if bestName == "" {
		return Identity{}, false
	}

	row, ok := table.First(bestName)
	if !ok {
		return Identity{}, false
	}
	return Identity{Key: row.Key(), FullName: bestName}, true
}

// Score returns the raw additive score of candidate for an already
// normalized input. The value is not capped at 100.
func (m *Matcher) Score(normalized, candidate, teamHint string, table stattable.Table) int {
	return m.score(normalized, candidate, canonical(teamHint), table)
}

// Rank scores every player and returns the top n, best first. Equal scores
// keep table order.
func (m *Matcher) Rank(rawName, teamHint string, table stattable.Table, n int) []Candidate {
	normalized := m.normalizer.Normalize(rawName)
	hint := canonical(teamHint)

	players := table.Players()
	out := make([]Candidate, 0, len(players))
	for _, player := range players {
		out = append(out, Candidate{Name: player, Score: m.score(normalized, player, hint, table)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (m *Matcher) score(normalized, candidate, hint string, table stattable.Table) int {
	player := strings.ToLower(candidate)

	score := Ratio(normalized, player)

	if strings.Contains(player, normalized) || strings.Contains(normalized, player) {
		score += substringBonus
	}

	for _, namePart := range strings.Fields(normalized) {
		for _, playerPart := range strings.Fields(player) {
			if utf8.RuneCountInString(namePart) < minTokenRunes || utf8.RuneCountInString(playerPart) < minTokenRunes {
				continue
			}
			if strings.Contains(playerPart, namePart) || strings.Contains(namePart, playerPart) {
				score += tokenPairBonus
			}
		}
	}

	if hint != "" && score > teamBonusThreshold {
		for _, team := range table.TeamsFor(candidate) {
			team = strings.ToLower(team)
			if strings.Contains(team, hint) || strings.Contains(hint, team) {
				score += teamBonus
				break
			}
		}
	}

	return score
}

// Ratio is the sequence-matcher similarity of a and b on a 0-100 scale:
// 2*M/(len(a)+len(b)) over runes, where M counts the characters in matching
// blocks, rounded half to even. Equal strings give 100, either string empty
// gives 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(runeElems(a), runeElems(b))
	return int(math.RoundToEven(100 * m.Ratio()))
}

func runeElems(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
