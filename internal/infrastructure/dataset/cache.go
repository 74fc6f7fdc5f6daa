package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/metrics"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/resilience"
)

type Config struct {
	// FetchTimeout bounds a single provider call.
	FetchTimeout time.Duration
	// RetryCooldown is how long an empty or failed category stays cached
	// before the next Load tries the provider again. Zero never retries.
	RetryCooldown  time.Duration
	PreloadWorkers int
}

func DefaultConfig() Config {
	return Config{
		FetchTimeout:   45 * time.Second,
		RetryCooldown:  10 * time.Minute,
		PreloadWorkers: 4,
	}
}

type slot struct {
	table    stattable.Table
	failedAt time.Time
}

// Cache memoizes one table per category for the life of the process.
type Cache struct {
	provider stattable.Provider
	cfg      Config
	logger   *logging.Logger
	now      func() time.Time

	mu     sync.RWMutex
	tables map[stattable.Category]slot
	flight resilience.Group[stattable.Table]
}

func NewCache(provider stattable.Provider, cfg Config, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultConfig()
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.RetryCooldown < 0 {
		cfg.RetryCooldown = 0
	}
	if cfg.PreloadWorkers < 1 {
		cfg.PreloadWorkers = defaults.PreloadWorkers
	}

	return &Cache{
		provider: provider,
		cfg:      cfg,
		logger:   logger.Named("dataset"),
		now:      time.Now,
		tables:   make(map[stattable.Category]slot),
	}
}

// Available reports whether a provider is configured at all.
func (c *Cache) Available() bool {
	return c.provider != nil
}

// Load returns the table for category, fetching it on first use. Concurrent
// first loads share one fetch. Fetch failures produce an empty table.
func (c *Cache) Load(ctx context.Context, category stattable.Category) stattable.Table {
	if c.provider == nil {
		return stattable.Empty(category)
	}
	if table, ok := c.cached(category); ok {
		return table
	}

	table, _, _ := c.flight.Do(string(category), func() (stattable.Table, error) {
		if table, ok := c.cached(category); ok {
			return table, nil
		}
		return c.fetch(ctx, category), nil
	})
	return table
}

// Stats maps every category attempted so far to its row count. Failed
// categories report zero.
func (c *Cache) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.tables))
	for category, s := range c.tables {
		out[string(category)] = s.table.Len()
	}
	return out
}

// Preload loads categories concurrently on a bounded worker pool and returns
// the resulting row counts.
func (c *Cache) Preload(ctx context.Context, categories ...stattable.Category) (map[stattable.Category]int, error) {
	out := make(map[stattable.Category]int, len(categories))
	if len(categories) == 0 {
		return out, nil
	}

	workers := min(c.cfg.PreloadWorkers, len(categories))
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create preload pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, category := range categories {
		category := category
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			rows := c.Load(ctx, category).Len()
			mu.Lock()
			out[category] = rows
			mu.Unlock()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit preload of %s: %w", category, err)
		}
	}
	wg.Wait()

	c.logger.InfoContext(ctx, "dataset preload finished", "categories", len(categories), "rows", out)
	return out, nil
}

func (c *Cache) cached(category stattable.Category) (stattable.Table, bool) {
	c.mu.RLock()
	s, ok := c.tables[category]
	c.mu.RUnlock()
	if !ok {
		return stattable.Table{}, false
	}
	if s.failedAt.IsZero() || c.cfg.RetryCooldown == 0 {
		return s.table, true
	}
	if c.now().Sub(s.failedAt) < c.cfg.RetryCooldown {
		return s.table, true
	}
	return stattable.Table{}, false
}

func (c *Cache) fetch(ctx context.Context, category stattable.Category) (table stattable.Table) {
	// The fetch is shared with other waiters, so one caller going away must
	// not cancel it.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
	defer cancel()

	start := c.now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "dataset fetch panicked", "category", category, "panic", fmt.Sprint(r))
			table = c.store(category, stattable.Empty(category), true)
			metrics.ObserveDatasetLoad(string(category), "error", 0, time.Since(start))
		}
	}()

	loaded, err := c.provider.FetchCategory(fetchCtx, category)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.WarnContext(ctx, "dataset fetch failed", "category", category, "error", err, "elapsed", elapsed)
		metrics.ObserveDatasetLoad(string(category), "error", 0, elapsed)
		return c.store(category, stattable.Empty(category), true)
	}
	if loaded.Category() != category {
		loaded = stattable.New(category, loaded.LoadedAt(), loaded.Rows())
	}
	if loaded.IsEmpty() {
		c.logger.WarnContext(ctx, "dataset fetch returned no rows", "category", category, "elapsed", elapsed)
		metrics.ObserveDatasetLoad(string(category), "empty", 0, elapsed)
		return c.store(category, loaded, true)
	}

	c.logger.InfoContext(ctx, "dataset loaded", "category", category, "rows", loaded.Len(), "elapsed", elapsed)
	metrics.ObserveDatasetLoad(string(category), "ok", loaded.Len(), elapsed)
	return c.store(category, loaded, false)
}

func (c *Cache) store(category stattable.Category, table stattable.Table, failed bool) stattable.Table {
	s := slot{table: table}
	if failed {
		s.failedAt = c.now()
	}
	c.mu.Lock()
	c.tables[category] = s
	c.mu.Unlock()
	return table
}
