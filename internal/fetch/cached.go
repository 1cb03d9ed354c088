package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/db"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/metrics"
)

// DefaultSharedFetchTimeout bounds one shared fetch, including a browser fallback.
const DefaultSharedFetchTimeout = DefaultTimeout + DefaultBrowserTimeout

// SummaryStore persists summaries and failure backoff across processes. *db.DB
// satisfies it.
type SummaryStore interface {
	GetFreshSiteSummary(ctx context.Context, pageURL string, maxAge time.Duration) (*db.SiteSummary, error)
	ShouldSkipURL(ctx context.Context, pageURL string) (bool, string, error)
	UpsertSiteSummary(ctx context.Context, s *db.SiteSummary, ttl time.Duration) error
	RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error
}

// CacheConfig holds configuration for the cached summarizer.
type CacheConfig struct {
	Size     int
	TTL      time.Duration
	Store    SummaryStore // optional
	StoreTTL time.Duration
	Metrics  *metrics.Recorder
	Verbose  bool
	// FetchTimeout bounds a fetch shared by concurrent callers.
	FetchTimeout time.Duration
}

// DefaultCacheConfig returns sensible defaults.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Size:     256,
		TTL:      time.Hour,
		StoreTTL: db.DefaultSummaryCacheTTL,

		FetchTimeout: DefaultSharedFetchTimeout,
	}
}

// CachedSummarizer wraps a SummaryFetcher with an in-memory LRU, collapses concurrent
// fetches of the same URL and, when a store is configured, a persistent cache with
// failure backoff.
type CachedSummarizer struct {
	next    SummaryFetcher
	lru     *expirable.LRU[string, Summary]
	group   singleflight.Group
	store   SummaryStore
	ttl     time.Duration
	timeout time.Duration
	metrics *metrics.Recorder
	verbose bool
}

// NewCachedSummarizer creates a cached summarizer around next.
func NewCachedSummarizer(next SummaryFetcher, config *CacheConfig) *CachedSummarizer {
	if config == nil {
		config = DefaultCacheConfig()
	}
	size := config.Size
	if size <= 0 {
		size = DefaultCacheConfig().Size
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultCacheConfig().TTL
	}
	storeTTL := config.StoreTTL
	if storeTTL <= 0 {
		storeTTL = db.DefaultSummaryCacheTTL
	}
	timeout := config.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultSharedFetchTimeout
	}
	return &CachedSummarizer{
		next:    next,
		lru:     expirable.NewLRU[string, Summary](size, nil, ttl),
		store:   config.Store,
		ttl:     storeTTL,
		timeout: timeout,
		metrics: config.Metrics,
		verbose: config.Verbose,
	}
}

// FetchSummary returns a cached summary when one is available, otherwise fetches it.
func (c *CachedSummarizer) FetchSummary(ctx context.Context, rawURL string) (*Summary, error) {
	pageURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if cached, ok := c.lru.Get(pageURL); ok {
		c.metrics.ObserveWebsiteFetch(metrics.FetchResultHit)
		cached.Source = SourceCache
		return &cached, nil
	}

	// The shared load outlives any single caller; each caller waits on its own ctx.
	ch := c.group.DoChan(pageURL, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.load(loadCtx, pageURL)
	})
	select {
	case <-ctx.Done():
		return nil, &Error{URL: pageURL, Message: "fetch abandoned", Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		summary := res.Val.(Summary)
		return &summary, nil
	}
}

// Invalidate drops a URL from the in-memory cache.
func (c *CachedSummarizer) Invalidate(rawURL string) {
	if pageURL, err := NormalizeURL(rawURL); err == nil {
		c.lru.Remove(pageURL)
	}
}

// Len returns the number of summaries held in memory.
func (c *CachedSummarizer) Len() int {
	return c.lru.Len()
}

func (c *CachedSummarizer) load(ctx context.Context, pageURL string) (Summary, error) {
	if c.store != nil {
		skip, reason, err := c.store.ShouldSkipURL(ctx, pageURL)
		if err != nil {
			log.Printf("[fetch] Summary store unavailable, fetching directly: %v", err)
		} else if skip {
			c.metrics.ObserveWebsiteFetch(metrics.FetchResultSkipped)
			return Summary{}, &Error{URL: pageURL, Message: fmt.Sprintf("URL skipped: %s", reason)}
		}

		if err == nil {
			stored, err := c.store.GetFreshSiteSummary(ctx, pageURL, c.ttl)
			if err != nil {
				log.Printf("[fetch] Failed to read cached summary for %s: %v", pageURL, err)
			} else if stored != nil {
				summary := Summary{
					URL:         pageURL,
					Title:       derefString(stored.Title),
					Description: derefString(stored.Description),
					Source:      SourceCache,
				}
				c.lru.Add(pageURL, summary)
				c.metrics.ObserveWebsiteFetch(metrics.FetchResultHit)
				return summary, nil
			}
		}
	}

	fetched, err := c.next.FetchSummary(ctx, pageURL)
	if err != nil {
		c.metrics.ObserveWebsiteFetch(metrics.FetchResultFailure)
		c.recordFailure(pageURL, err)
		return Summary{}, err
	}

	summary := *fetched
	c.lru.Add(pageURL, summary)
	c.metrics.ObserveWebsiteFetch(metrics.FetchResultSuccess)

	if c.store != nil {
		row := &db.SiteSummary{URL: pageURL, Title: optional(summary.Title), Description: optional(summary.Description)}
		if err := c.store.UpsertSiteSummary(context.WithoutCancel(ctx), row, c.ttl); err != nil {
			log.Printf("[fetch] Failed to store summary for %s: %v", pageURL, err)
		}
	}
	return summary, nil
}

func (c *CachedSummarizer) recordFailure(pageURL string, fetchErr error) {
	if c.store == nil {
		return
	}
	// Cancellation says nothing about the site
	if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
		return
	}
	status := 0
	var fe *Error
	if errors.As(fetchErr, &fe) {
		status = fe.StatusCode
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.RecordFailedFetch(ctx, pageURL, status, fetchErr.Error()); err != nil && c.verbose {
		log.Printf("[fetch] Failed to record fetch failure for %s: %v", pageURL, err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
