package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playeridentity"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playerstats"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/cache"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/metrics"
)

const (
	defaultSourceLabel   = "FBref"
	sampleNamesOnMiss    = 10
	resultCacheSeparator = "\x1f"
)

// DatasetLoader hands out category tables. Load never fails; an unavailable
// category comes back empty.
type DatasetLoader interface {
	Available() bool
	Load(ctx context.Context, category stattable.Category) stattable.Table
	Stats() map[string]int
}

type PlayerStatsQuery struct {
	Name string `validate:"required,max=100"`
	Team string `validate:"max=100"`
}

type CacheStats struct {
	Entries          int            `json:"entries"`
	CategoriesLoaded map[string]int `json:"categories_loaded"`
}

// PlayerStatsService resolves a free-text player name and aggregates the
// player's season stats. Results are memoized per (name, team).
type PlayerStatsService struct {
	datasets DatasetLoader
	matcher  *playeridentity.Matcher
	results  *cache.Store[playerstats.Result]
	validate *validator.Validate
	source   string
	logger   *logging.Logger
	now      func() time.Time
}

func NewPlayerStatsService(
	datasets DatasetLoader,
	matcher *playeridentity.Matcher,
	results *cache.Store[playerstats.Result],
	sourceLabel string,
	logger *logging.Logger,
) *PlayerStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(sourceLabel) == "" {
		sourceLabel = defaultSourceLabel
	}
	return &PlayerStatsService{
		datasets: datasets,
		matcher:  matcher,
		results:  results,
		validate: validator.New(),
		source:   strings.TrimSpace(sourceLabel),
		logger:   logger.Named("player_stats"),
		now:      time.Now,
	}
}

func (s *PlayerStatsService) Source() string {
	return s.source
}

// Available reports whether a stats provider is configured at all.
func (s *PlayerStatsService) Available() bool {
	return s.datasets != nil && s.datasets.Available()
}

// GetPlayerStats is the single query entry point. Every failure, including a
// panic while aggregating, comes back as a *playerstats.QueryError.
func (s *PlayerStatsService) GetPlayerStats(ctx context.Context, rawName, teamHint string) (result playerstats.Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.GetPlayerStats",
		attribute.String("player.query", rawName),
		attribute.String("player.team_hint", teamHint),
	)
	defer func() { finishUsecaseSpan(span, err) }()

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "player stats aggregation panicked", "player", rawName, "team", teamHint, "panic", fmt.Sprint(r))
			result = playerstats.Result{}
			err = newQueryError(playerstats.KindInternal, rawName, "Errore interno durante l'aggregazione",
				fmt.Errorf("%w: %v", ErrInternal, r))
		}
		metrics.ObserveQuery(queryOutcome(err))
	}()

	query := PlayerStatsQuery{Name: strings.TrimSpace(rawName), Team: strings.TrimSpace(teamHint)}
	if verr := s.validate.StructCtx(ctx, query); verr != nil {
		return playerstats.Result{}, newQueryError(playerstats.KindInvalidInput, rawName, "Nome giocatore non valido",
			fmt.Errorf("%w: %v", ErrInvalidInput, verr))
	}

	// Concurrent identical queries share one resolve through the store's
	// single-flight; only successful results are stored.
	computed := false
	result, err = s.results.GetOrLoad(ctx, resultCacheKey(rawName, teamHint), func(ctx context.Context) (playerstats.Result, error) {
		computed = true
		return s.compute(ctx, rawName, teamHint)
	})
	metrics.ObserveResultCache(!computed)
	if err != nil {
		return playerstats.Result{}, err
	}
	return result.Clone(), nil
}

func (s *PlayerStatsService) compute(ctx context.Context, rawName, teamHint string) (playerstats.Result, error) {
	if !s.Available() {
		return playerstats.Result{}, newQueryError(playerstats.KindServiceUnavailable, rawName, "Servizio dati non disponibile",
			fmt.Errorf("%w: no stats provider configured", ErrDependencyUnavailable))
	}

	standard := s.datasets.Load(ctx, stattable.CategoryStandard)
	if standard.IsEmpty() {
		return playerstats.Result{}, newQueryError(playerstats.KindServiceUnavailable, rawName, "Impossibile caricare i dati",
			fmt.Errorf("%w: standard stats unavailable", ErrDependencyUnavailable))
	}

	identity, ok := s.matcher.Resolve(rawName, teamHint, standard)
	if !ok {
		qe := newQueryError(playerstats.KindPlayerNotFound, rawName, fmt.Sprintf("Giocatore '%s' non trovato", rawName),
			fmt.Errorf("%w: player=%q team=%q", ErrNotFound, rawName, teamHint))
		qe.AvailablePlayers = samplePlayers(standard, sampleNamesOnMiss)
		return playerstats.Result{}, qe
	}

	result := s.aggregate(ctx, identity, standard)
	s.logger.InfoContext(ctx, "player stats aggregated",
		"query", rawName,
		"team", teamHint,
		"player", identity.FullName,
		"goalkeeper", result.Stats.Goalkeeper != nil,
	)
	return result, nil
}

// ClearCache empties the result cache. Loaded datasets are kept.
func (s *PlayerStatsService) ClearCache(ctx context.Context) int {
	n := s.results.Clear(ctx)
	s.logger.InfoContext(ctx, "result cache cleared", "entries", n)
	return n
}

func (s *PlayerStatsService) CacheStats(_ context.Context) CacheStats {
	return CacheStats{
		Entries:          s.results.Len(),
		CategoriesLoaded: s.datasets.Stats(),
	}
}

func (s *PlayerStatsService) aggregate(ctx context.Context, identity playeridentity.Identity, standard stattable.Table) playerstats.Result {
	// First row in table order is "current"; seasons are not compared.
	current, ok := standard.First(identity.FullName)
	if !ok {
		panic(fmt.Sprintf("resolved player %q has no standard row", identity.FullName))
	}

	var passing, keeper stattable.Table
	var wg conc.WaitGroup
	wg.Go(func() { passing = s.datasets.Load(ctx, stattable.CategoryPassing) })
	wg.Go(func() { keeper = s.datasets.Load(ctx, stattable.CategoryKeeper) })
	wg.Wait()

	isKeeper := playerstats.IsGoalkeeper(identity.FullName, keeper, current)

	general := playerstats.BuildGeneral(current)
	stats := playerstats.Stats{General: general}
	if row, ok := passing.First(identity.FullName); ok {
		stats.Passing = playerstats.BuildPassing(row)
	}
	if isKeeper {
		if row, ok := keeper.First(identity.FullName); ok {
			stats.Goalkeeper = playerstats.BuildKeeper(row)
		}
	}

	updated := standard.LoadedAt()
	if updated.IsZero() {
		updated = s.now()
	}

	key := current.Key()
	return playerstats.Result{
		Player: playerstats.PlayerInfo{
			Name:   identity.FullName,
			Team:   key.Team,
			League: key.League,
			Season: stattable.SeasonLabel(key.Season),
		},
		Stats:               stats,
		FantacalcioInsights: playerstats.BuildInsights(general, stats.Goalkeeper, s.source),
		Source:              s.source,
		LastUpdated:         updated.Format(time.DateOnly),
	}
}

func resultCacheKey(rawName, teamHint string) string {
	return rawName + resultCacheSeparator + teamHint
}

func samplePlayers(table stattable.Table, n int) []string {
	players := table.Players()
	if len(players) > n {
		players = players[:n]
	}
	return players
}

func newQueryError(kind playerstats.ErrorKind, rawName, message string, err error) *playerstats.QueryError {
	return &playerstats.QueryError{
		Kind:    kind,
		Message: message,
		RawName: rawName,
		Err:     err,
	}
}

func queryOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if qe, ok := playerstats.AsQueryError(err); ok {
		return string(qe.Kind)
	}
	return "error"
}
