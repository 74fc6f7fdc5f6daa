package stattable

import (
	"context"
	"strings"
	"time"
)

// Key identifies one row: a player's season at a team in a league.
type Key struct {
	League string
	Season string
	Team   string
	Player string
}

// Row is one player-season line. Cell values are kept as the provider's raw
// strings; use Number or Int to read them.
type Row struct {
	key    Key
	values map[string]string
}

func NewRow(key Key, values map[string]string) Row {
	copied := make(map[string]string, len(values))
	for col, v := range values {
		copied[col] = v
	}
	return Row{key: key, values: copied}
}

func (r Row) Key() Key {
	return r.key
}

// Number coerces a cell; missing or unparsable cells yield def.
func (r Row) Number(col string, def float64) float64 {
	raw, ok := r.values[col]
	if !ok {
		return def
	}
	return Number(raw, def)
}

// Int truncates the coerced value toward zero.
func (r Row) Int(col string, def int) int {
	return int(r.Number(col, float64(def)))
}

// Table is an immutable per-category dataset. Row order is the provider's
// order and is preserved by every accessor.
type Table struct {
	category Category
	loadedAt time.Time
	rows     []Row
	players  []string
	byPlayer map[string][]int
}

func New(category Category, loadedAt time.Time, rows []Row) Table {
	t := Table{
		category: category,
		loadedAt: loadedAt,
		rows:     make([]Row, len(rows)),
		byPlayer: make(map[string][]int),
	}
	copy(t.rows, rows)

	for i, row := range t.rows {
		name := row.key.Player
		if name == "" {
			continue
		}
		if _, ok := t.byPlayer[name]; !ok {
			t.players = append(t.players, name)
		}
		t.byPlayer[name] = append(t.byPlayer[name], i)
	}
	return t
}

// Empty is the table handed out when a category could not be loaded.
func Empty(category Category) Table {
	return Table{category: category}
}

func (t Table) Category() Category {
	return t.category
}

func (t Table) LoadedAt() time.Time {
	return t.loadedAt
}

func (t Table) Len() int {
	return len(t.rows)
}

func (t Table) IsEmpty() bool {
	return len(t.rows) == 0
}

func (t Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Players lists distinct player names in first-seen order.
func (t Table) Players() []string {
	out := make([]string, len(t.players))
	copy(out, t.players)
	return out
}

func (t Table) Has(player string) bool {
	_, ok := t.byPlayer[player]
	return ok
}

// First returns the first row for player. Table order decides which season
// that is; no sort is applied.
func (t Table) First(player string) (Row, bool) {
	idx := t.byPlayer[player]
	if len(idx) == 0 {
		return Row{}, false
	}
	return t.rows[idx[0]], true
}

// TeamsFor returns the distinct teams the player appears under.
func (t Table) TeamsFor(player string) []string {
	idx := t.byPlayer[player]
	out := make([]string, 0, len(idx))
	seen := make(map[string]struct{}, len(idx))
	for _, i := range idx {
		team := strings.TrimSpace(t.rows[i].key.Team)
		if team == "" {
			continue
		}
		if _, ok := seen[team]; ok {
			continue
		}
		seen[team] = struct{}{}
		out = append(out, team)
	}
	return out
}

// Provider supplies raw category tables. Implementations may fail; callers
// in this module absorb failures into Empty tables.
type Provider interface {
	Name() string
	FetchCategory(ctx context.Context, category Category) (Table, error)
}
