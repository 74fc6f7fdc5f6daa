package fbref

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/metrics"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/resilience"
	"github.com/riskibarqy/fantacalcio-stats/internal/usecase"
)

const (
	providerName = "fbref"

	defaultBaseURL   = "https://fbref.com"
	defaultCompID    = "11"
	defaultCompSlug  = "Serie-A"
	defaultLeague    = "ITA-Serie A"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 12 << 20
)

var errFBrefTransient = crerr.New("fbref transient failure")

type ClientConfig struct {
	BaseURL  string
	CompID   string
	CompSlug string
	League   string
	// Season is the FBref season path segment, e.g. "2024-2025". Empty
	// means the current season, labelled from the page heading.
	Season string

	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	UserAgent         string

	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client scrapes competition stats pages from FBref.
type Client struct {
	http         *fasthttp.Client
	baseURL      string
	compID       string
	compSlug     string
	league       string
	season       string
	userAgent    string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	breaker      *resilience.CircuitBreaker
	logger       *logging.Logger
	now          func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named(providerName)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 3 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	var breaker *resilience.CircuitBreaker
	if cfg.CircuitBreaker.Enabled {
		breaker = resilience.NewCircuitBreaker(providerName, cfg.CircuitBreaker)
		breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from, "to", to)
			metrics.SetCircuitOpen(name, to != resilience.CircuitStateClosed)
		})
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                     providerName,
			NoDefaultUserAgentHeader: true,
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      maxBodyBytes,
			MaxIdleConnDuration:      90 * time.Second,
		},
		baseURL:      firstNonEmpty(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"), defaultBaseURL),
		compID:       firstNonEmpty(cfg.CompID, defaultCompID),
		compSlug:     firstNonEmpty(cfg.CompSlug, defaultCompSlug),
		league:       firstNonEmpty(cfg.League, defaultLeague),
		season:       strings.TrimSpace(cfg.Season),
		userAgent:    firstNonEmpty(cfg.UserAgent, defaultUserAgent),
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		limiter:      rate.NewLimiter(limit, burst),
		breaker:      breaker,
		logger:       logger,
		now:          time.Now,
	}
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) FetchCategory(ctx context.Context, category stattable.Category) (stattable.Table, error) {
	p, ok := pages[category]
	if !ok {
		return stattable.Table{}, fmt.Errorf("fbref has no page for category %q", category)
	}

	url := pageURL(c.baseURL, c.compID, c.compSlug, c.season, p)
	body, err := c.get(ctx, url)
	if err != nil {
		return stattable.Table{}, fmt.Errorf("fetch %s: %w", category, err)
	}

	now := c.now()
	rows, err := parseTable(body, p.tableID, stattable.Key{League: c.league, Season: c.season}, seasonAt(now))
	if err != nil {
		return stattable.Table{}, fmt.Errorf("parse %s: %w", category, err)
	}

	c.logger.DebugContext(ctx, "fbref table parsed", "category", category, "rows", len(rows), "url", url)
	return stattable.New(category, now, rows), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fbref circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fbref is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	body, err := c.executeRequest(ctx, url)
	if c.breaker != nil {
		// only transient failures count against upstream health
		if err != nil && crerr.Is(err, errFBrefTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return body, err
}

func (c *Client) executeRequest(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		status, raw, err := c.do(ctx, url)
		switch {
		case err != nil:
			lastErr = crerr.Wrapf(errFBrefTransient, "send request: %v", err)
			metrics.ObserveUpstream(providerName, "transport_error")
		case status >= 200 && status < 300:
			metrics.ObserveUpstream(providerName, statusClass(status))
			return raw, nil
		case isRetryableStatus(status):
			metrics.ObserveUpstream(providerName, statusClass(status))
			lastErr = crerr.Wrapf(errFBrefTransient, "status=%d", status)
		default:
			metrics.ObserveUpstream(providerName, statusClass(status))
			return nil, fmt.Errorf("fbref status=%d url=%s", status, url)
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		c.logger.DebugContext(ctx, "fbref request retry scheduled", "attempt", attempt+1, "backoff", backoff, "error", lastErr)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fbref request failed")
	}
	c.logger.WarnContext(ctx, "fbref request failed", "url", url, "error", lastErr)
	return nil, lastErr
}

// do runs one GET. fasthttp has no context support, so the context deadline
// is folded into the request deadline.
func (c *Client) do(ctx context.Context, url string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Referer", c.baseURL+"/")

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return status, nil, nil
	}
	body, err := resp.BodyUncompressed()
	if err != nil {
		return status, nil, crerr.Wrap(err, "decode response body")
	}
	// resp is released on return; keep our own copy
	return status, append([]byte(nil), body...), nil
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusForbidden || status == fasthttp.StatusTooManyRequests || status >= 500
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
