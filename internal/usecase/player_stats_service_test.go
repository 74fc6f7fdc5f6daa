package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playeridentity"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playerstats"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/infrastructure/dataset"
	stattablemock "github.com/riskibarqy/fantacalcio-stats/internal/mocks/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/cache"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
)

var loadedAt = time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)

type fakeDatasets struct {
	mu          sync.Mutex
	available   bool
	tables      map[stattable.Category]stattable.Table
	loads       map[stattable.Category]int
	panicOnLoad stattable.Category
	// gate, when set, holds standard loads until closed.
	gate chan struct{}
}

func newFakeDatasets(tables ...stattable.Table) *fakeDatasets {
	f := &fakeDatasets{
		available: true,
		tables:    make(map[stattable.Category]stattable.Table),
		loads:     make(map[stattable.Category]int),
	}
	for _, table := range tables {
		f.tables[table.Category()] = table
	}
	return f
}

func (f *fakeDatasets) Available() bool { return f.available }

func (f *fakeDatasets) Load(_ context.Context, category stattable.Category) stattable.Table {
	if f.gate != nil && category == stattable.CategoryStandard {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads[category]++
	if category == f.panicOnLoad {
		panic("malformed row shape")
	}
	if table, ok := f.tables[category]; ok {
		return table
	}
	return stattable.Empty(category)
}

func (f *fakeDatasets) Stats() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.tables))
	for category, table := range f.tables {
		out[string(category)] = table.Len()
	}
	return out
}

func (f *fakeDatasets) set(table stattable.Table) {
	f.mu.Lock()
	f.tables[table.Category()] = table
	f.mu.Unlock()
}

func (f *fakeDatasets) loadCount(category stattable.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[category]
}

func serieARow(team, player string, values map[string]string) stattable.Row {
	return stattable.NewRow(stattable.Key{League: "ITA-Serie A", Season: "2425", Team: team, Player: player}, values)
}

func standardTable(goalsLautaro string) stattable.Table {
	return stattable.New(stattable.CategoryStandard, loadedAt, []stattable.Row{
		serieARow("Inter", "Lautaro Martínez", map[string]string{
			stattable.ColMatchesPlayed: "25",
			stattable.ColMinutes:       "2010",
			stattable.ColGoals:         goalsLautaro,
			stattable.ColAssists:       "4",
			stattable.ColYellowCards:   "2",
			stattable.ColRedCards:      "0",
		}),
		serieARow("Inter", "Marcus Thuram", map[string]string{stattable.ColMatchesPlayed: "24", stattable.ColGoals: "12"}),
		serieARow("Juventus", "Michele Di Gregorio", map[string]string{
			stattable.ColMatchesPlayed: "20",
			stattable.ColMinutes:       "1800",
		}),
		serieARow("Juventus", "Dušan Vlahović", map[string]string{stattable.ColMatchesPlayed: "12", stattable.ColGoals: "NaN"}),
	})
}

func passingTable() stattable.Table {
	return stattable.New(stattable.CategoryPassing, loadedAt, []stattable.Row{
		serieARow("Inter", "Lautaro Martínez", map[string]string{
			stattable.ColPassesAttempted: "512",
			stattable.ColPassCompletion:  "71.26",
		}),
	})
}

func keeperTable() stattable.Table {
	return stattable.New(stattable.CategoryKeeper, loadedAt, []stattable.Row{
		serieARow("Juventus", "Michele Di Gregorio", map[string]string{
			stattable.ColKeeperMatches:        "20",
			stattable.ColKeeperGoalsAgainst:   "10",
			stattable.ColKeeperSaves:          "55",
			stattable.ColKeeperSavePct:        "76.44",
			stattable.ColKeeperCleanSheets:    "5",
			stattable.ColKeeperCleanSheetsPct: "25",
		}),
	})
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newService(t *testing.T, datasets DatasetLoader, clk *clock) *PlayerStatsService {
	t.Helper()
	if clk == nil {
		clk = &clock{now: loadedAt}
	}
	results := cache.NewStore[playerstats.Result](30*time.Minute, cache.WithClock(clk.Now))
	matcher := playeridentity.NewMatcher(playeridentity.NewNormalizer(playeridentity.DefaultAliases()))
	return NewPlayerStatsService(datasets, matcher, results, "FBref", logging.NewNop())
}

func TestGetPlayerStats_EndToEndAlias(t *testing.T) {
	t.Parallel()

	svc := newService(t, newFakeDatasets(standardTable("18"), passingTable(), keeperTable()), nil)

	got, err := svc.GetPlayerStats(context.Background(), "martinez l.", "inter")
	require.NoError(t, err)

	require.Equal(t, playerstats.PlayerInfo{Name: "Lautaro Martínez", Team: "Inter", League: "ITA-Serie A", Season: "2024-25"}, got.Player)
	require.Equal(t, playerstats.GeneralStats{MatchesPlayed: 25, Minutes: 2010, Goals: 18, Assists: 4, YellowCards: 2}, got.Stats.General)
	require.Equal(t, &playerstats.PassingStats{Attempted: 512, Completion: 71.3}, got.Stats.Passing)
	require.Nil(t, got.Stats.Goalkeeper)

	insights := got.FantacalcioInsights
	require.Equal(t, playerstats.ReliabilityHigh, insights.Reliability)
	require.Equal(t, 8.2, insights.EstimatedRating)
	require.Equal(t, 57.0, insights.BonusMalus)
	require.Equal(t, playerstats.TrendStable, insights.Trend)
	require.Equal(t, []string{"Ha giocato 25 partite", "Contributo gol+assist: 22", "Dati reali FBref"}, insights.Advice)
	require.Equal(t, "FBref", got.Source)
	require.Equal(t, "2025-03-02", got.LastUpdated)
}

func TestGetPlayerStats_ResponseKeys(t *testing.T) {
	t.Parallel()

	svc := newService(t, newFakeDatasets(standardTable("18"), passingTable(), keeperTable()), nil)
	got, err := svc.GetPlayerStats(context.Background(), "Di Gregorio", "juventus")
	require.NoError(t, err)

	raw, err := sonic.Marshal(got)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &decoded))
	for _, key := range []string{"player", "stats", "fantacalcio_insights", "fonte", "ultimo_aggiornamento"} {
		require.Contains(t, decoded, key)
	}
	stats := decoded["stats"].(map[string]any)
	require.Contains(t, stats, "generale")
	require.Contains(t, stats, "portiere")
	require.NotContains(t, stats, "passaggi")

	keeper := stats["portiere"].(map[string]any)
	for _, key := range []string{"partite_giocate", "gol_subiti", "parate", "percentuale_parate", "clean_sheets", "percentuale_clean_sheets"} {
		require.Contains(t, keeper, key)
	}
	insights := decoded["fantacalcio_insights"].(map[string]any)
	for _, key := range []string{"voto_medio_stimato", "bonus_malus_attesi", "affidabilita", "trend", "consigli", "ruolo"} {
		require.Contains(t, insights, key)
	}
}

func TestGetPlayerStats_GoalkeeperOverride(t *testing.T) {
	t.Parallel()

	svc := newService(t, newFakeDatasets(standardTable("18"), keeperTable()), nil)

	got, err := svc.GetPlayerStats(context.Background(), "michele di gregorio", "")
	require.NoError(t, err)
	require.NotNil(t, got.Stats.Goalkeeper)
	require.Equal(t, 5, got.Stats.Goalkeeper.CleanSheets)
	require.Equal(t, 76.4, got.Stats.Goalkeeper.SavePct)
	require.Equal(t, 6.0, got.FantacalcioInsights.EstimatedRating)
	require.Equal(t, -5.0, got.FantacalcioInsights.BonusMalus)
	require.Equal(t, playerstats.RoleGoalkeeper, got.FantacalcioInsights.Role)
	require.Equal(t, "Parate: 55", got.FantacalcioInsights.Advice[1])
	require.Nil(t, got.Stats.Passing, "passing category unavailable must be omitted")
}

func TestGetPlayerStats_FallbackGoalkeeperWithoutKeeperRowKeepsOutfieldInsights(t *testing.T) {
	t.Parallel()

	// keeper table missing: the fallback flags the player, but there is no keeper row to report
	svc := newService(t, newFakeDatasets(standardTable("18")), nil)

	got, err := svc.GetPlayerStats(context.Background(), "michele di gregorio", "")
	require.NoError(t, err)
	require.Nil(t, got.Stats.Goalkeeper)
	require.Equal(t, 6.0, got.FantacalcioInsights.EstimatedRating)
	require.Empty(t, got.FantacalcioInsights.Role)
}

func TestGetPlayerStats_NumericCoercion(t *testing.T) {
	t.Parallel()

	svc := newService(t, newFakeDatasets(standardTable("18")), nil)

	got, err := svc.GetPlayerStats(context.Background(), "vlahovic", "juventus")
	require.NoError(t, err)
	require.Equal(t, "Dušan Vlahović", got.Player.Name)
	require.Equal(t, 0, got.Stats.General.Goals)
	require.Equal(t, 0, got.Stats.General.Minutes)
	require.Equal(t, playerstats.ReliabilityMedium, got.FantacalcioInsights.Reliability)
}

func TestGetPlayerStats_CacheWithinTTL(t *testing.T) {
	t.Parallel()

	clk := &clock{now: loadedAt}
	datasets := newFakeDatasets(standardTable("18"), passingTable())
	svc := newService(t, datasets, clk)
	ctx := context.Background()

	first, err := svc.GetPlayerStats(ctx, "thuram", "inter")
	require.NoError(t, err)
	loads := datasets.loadCount(stattable.CategoryStandard)

	clk.Advance(29 * time.Minute)
	datasets.set(standardTable("30"))
	second, err := svc.GetPlayerStats(ctx, "thuram", "inter")
	require.NoError(t, err)

	firstJSON, err := sonic.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := sonic.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(firstJSON), string(secondJSON))
	require.Equal(t, loads, datasets.loadCount(stattable.CategoryStandard), "cached query must not resolve again")

	second.FantacalcioInsights.Advice[0] = "mutated"
	third, err := svc.GetPlayerStats(ctx, "thuram", "inter")
	require.NoError(t, err)
	require.NotEqual(t, "mutated", third.FantacalcioInsights.Advice[0])
}

func TestGetPlayerStats_ConcurrentQueriesResolveOnce(t *testing.T) {
	t.Parallel()

	datasets := newFakeDatasets(standardTable("18"), passingTable())
	datasets.gate = make(chan struct{})
	svc := newService(t, datasets, nil)
	ctx := context.Background()

	const callers = 8
	names := make(chan string, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.GetPlayerStats(ctx, "thuram", "inter")
			if err != nil {
				t.Errorf("GetPlayerStats: %v", err)
				return
			}
			names <- got.Player.Name
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(datasets.gate)
	wg.Wait()
	close(names)

	for name := range names {
		require.Equal(t, "Marcus Thuram", name)
	}
	require.Equal(t, 1, datasets.loadCount(stattable.CategoryStandard))
	require.Equal(t, 1, datasets.loadCount(stattable.CategoryKeeper))
	require.Equal(t, 1, svc.CacheStats(ctx).Entries)
}

func TestGetPlayerStats_CacheExpiryReflectsNewData(t *testing.T) {
	t.Parallel()

	clk := &clock{now: loadedAt}
	datasets := newFakeDatasets(standardTable("18"))
	svc := newService(t, datasets, clk)
	ctx := context.Background()

	first, err := svc.GetPlayerStats(ctx, "martinez l.", "inter")
	require.NoError(t, err)
	require.Equal(t, 18, first.Stats.General.Goals)

	datasets.set(standardTable("21"))
	clk.Advance(30 * time.Minute)

	second, err := svc.GetPlayerStats(ctx, "martinez l.", "inter")
	require.NoError(t, err)
	require.Equal(t, 21, second.Stats.General.Goals)
	require.Equal(t, 2, datasets.loadCount(stattable.CategoryStandard))
}

func TestGetPlayerStats_CacheKeyIncludesTeam(t *testing.T) {
	t.Parallel()

	datasets := newFakeDatasets(standardTable("18"))
	svc := newService(t, datasets, nil)
	ctx := context.Background()

	_, err := svc.GetPlayerStats(ctx, "thuram", "")
	require.NoError(t, err)
	_, err = svc.GetPlayerStats(ctx, "thuram", "inter")
	require.NoError(t, err)

	require.Equal(t, 2, datasets.loadCount(stattable.CategoryStandard))
	require.Equal(t, 2, svc.CacheStats(ctx).Entries)
}

func TestGetPlayerStats_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("standard unavailable", func(t *testing.T) {
		svc := newService(t, newFakeDatasets(passingTable()), nil)
		_, err := svc.GetPlayerStats(ctx, "thuram", "")
		qe, ok := playerstats.AsQueryError(err)
		require.True(t, ok)
		require.Equal(t, playerstats.KindServiceUnavailable, qe.Kind)
		require.ErrorIs(t, err, ErrDependencyUnavailable)
	})

	t.Run("no provider", func(t *testing.T) {
		datasets := newFakeDatasets(standardTable("18"))
		datasets.available = false
		svc := newService(t, datasets, nil)
		_, err := svc.GetPlayerStats(ctx, "thuram", "")
		require.ErrorIs(t, err, ErrDependencyUnavailable)
		require.Zero(t, datasets.loadCount(stattable.CategoryStandard))
	})

	t.Run("player not found", func(t *testing.T) {
		svc := newService(t, newFakeDatasets(standardTable("18")), nil)
		_, err := svc.GetPlayerStats(ctx, "zinedine zidane", "")
		qe, ok := playerstats.AsQueryError(err)
		require.True(t, ok)
		require.Equal(t, playerstats.KindPlayerNotFound, qe.Kind)
		require.Equal(t, "zinedine zidane", qe.RawName)
		require.Equal(t, []string{"Lautaro Martínez", "Marcus Thuram", "Michele Di Gregorio", "Dušan Vlahović"}, qe.AvailablePlayers)
		require.ErrorIs(t, err, ErrNotFound)
		require.Zero(t, svc.CacheStats(ctx).Entries, "errors are not cached")
	})

	t.Run("blank name", func(t *testing.T) {
		svc := newService(t, newFakeDatasets(standardTable("18")), nil)
		_, err := svc.GetPlayerStats(ctx, "   ", "")
		qe, ok := playerstats.AsQueryError(err)
		require.True(t, ok)
		require.Equal(t, playerstats.KindInvalidInput, qe.Kind)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("panic becomes internal error", func(t *testing.T) {
		datasets := newFakeDatasets(standardTable("18"))
		datasets.panicOnLoad = stattable.CategoryKeeper
		svc := newService(t, datasets, nil)
		_, err := svc.GetPlayerStats(ctx, "thuram", "")
		qe, ok := playerstats.AsQueryError(err)
		require.True(t, ok)
		require.Equal(t, playerstats.KindInternal, qe.Kind)
		require.ErrorIs(t, err, ErrInternal)
	})
}

func TestClearCacheAndStats(t *testing.T) {
	t.Parallel()

	svc := newService(t, newFakeDatasets(standardTable("18"), passingTable()), nil)
	ctx := context.Background()

	_, err := svc.GetPlayerStats(ctx, "thuram", "")
	require.NoError(t, err)

	stats := svc.CacheStats(ctx)
	require.Equal(t, 1, stats.Entries)
	require.Equal(t, map[string]int{"standard": 4, "passing": 1}, stats.CategoriesLoaded)

	require.Equal(t, 1, svc.ClearCache(ctx))
	require.Zero(t, svc.CacheStats(ctx).Entries)
	require.Equal(t, 4, svc.CacheStats(ctx).CategoriesLoaded["standard"], "datasets survive a result cache clear")
}

func TestGetPlayerStats_WithDatasetCacheAndProvider(t *testing.T) {
	t.Parallel()

	anyCtx := mock.MatchedBy(func(ctx context.Context) bool { return ctx != nil })
	provider := stattablemock.NewProvider(t)
	provider.On("FetchCategory", anyCtx, stattable.CategoryStandard).Return(standardTable("18"), nil).Once()
	provider.On("FetchCategory", anyCtx, stattable.CategoryPassing).Return(stattable.Table{}, errors.New("429")).Once()
	provider.On("FetchCategory", anyCtx, stattable.CategoryKeeper).Return(keeperTable(), nil).Once()

	datasets := dataset.NewCache(provider, dataset.Config{}, logging.NewNop())
	svc := newService(t, datasets, nil)
	ctx := context.Background()

	got, err := svc.GetPlayerStats(ctx, "lautaro m.", "Inter")
	require.NoError(t, err)
	require.Equal(t, "Lautaro Martínez", got.Player.Name)
	require.Nil(t, got.Stats.Passing, "failed passing fetch degrades to an omitted block")

	keeper, err := svc.GetPlayerStats(ctx, "di gregorio", "")
	require.NoError(t, err)
	require.NotNil(t, keeper.Stats.Goalkeeper)

	require.Equal(t, map[string]int{"standard": 4, "passing": 0, "keeper": 1}, svc.CacheStats(ctx).CategoriesLoaded)
}
