// Package propublica implements the C4 enrichment client: organization
// profile and filing-summary lookups by EIN against the ProPublica Nonprofit
// Explorer API, with a TTL cache, a configurable rate limit, and exponential
// backoff with jitter on transient failures.
package propublica

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"grantintel/pkg/models"
)

const (
	userAgent       = "grantintel research client (contact: research@grantintel.local)"
	defaultAPIBase  = "https://projects.propublica.org/nonprofits/api/v2/organizations"
	defaultHTMLBase = "https://projects.propublica.org/nonprofits/organizations"
)

// Client is the C4 enrichment client. One Client instance owns the rate
// limiter and cache for every lookup it serves, so callers share a single
// instance across concurrent tool invocations.
type Client struct {
	http *http.Client

	minInterRequestDelay time.Duration
	hourlyCeiling        int
	maxAttempts          int
	baseBackoff          time.Duration

	rateMu      sync.Mutex
	lastRequest time.Time
	windowStart time.Time
	windowCount int

	cache *ttlCache

	now func() time.Time

	apiBase  string
	htmlBase string
}

// Config collects the tunables named in C4's contract.
type Config struct {
	MinInterRequestDelay time.Duration
	HourlyCeiling        int
	CacheTTL             time.Duration
	MaxAttempts          int
	BaseBackoff          time.Duration
}

// New constructs a Client. A nil/zero Config falls back to the conservative
// defaults named in spec.md §4.4 (0.2s delay, 3 retries).
func New(cfg Config) *Client {
	if cfg.MinInterRequestDelay <= 0 {
		cfg.MinInterRequestDelay = 200 * time.Millisecond
	}
	if cfg.HourlyCeiling <= 0 {
		cfg.HourlyCeiling = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 7 * 24 * time.Hour
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4 // the first request plus 3 retries
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 250 * time.Millisecond
	}

	return &Client{
		http:                  &http.Client{Timeout: 30 * time.Second},
		minInterRequestDelay:  cfg.MinInterRequestDelay,
		hourlyCeiling:         cfg.HourlyCeiling,
		maxAttempts:           cfg.MaxAttempts,
		baseBackoff:           cfg.BaseBackoff,
		cache:                 newTTLCache(cfg.CacheTTL),
		now:                   time.Now,
		apiBase:               defaultAPIBase,
		htmlBase:              defaultHTMLBase,
	}
}

// Lookup fetches the organization profile and recent filing summaries for
// an EIN, serving a fresh cache entry when one exists. On terminal failure
// (retries exhausted or non-retryable response) it returns an
// EnrichmentRecord with Status=Failed and a typed FailureReason rather than
// an error — only a caller-level problem (an empty EIN) returns an error.
func (c *Client) Lookup(ctx context.Context, ein string) (models.EnrichmentRecord, error) {
	ein = strings.TrimSpace(ein)
	if ein == "" {
		return models.EnrichmentRecord{}, models.NewError(models.KindInvalidArguments, "EIN must not be empty", nil)
	}

	if rec, ok := c.cache.get(ein); ok {
		return rec, nil
	}

	rec := c.fetchWithRetry(ctx, ein)
	c.cache.set(ein, rec)
	return rec, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, ein string) models.EnrichmentRecord {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.throttle(ctx); err != nil {
			return failed(ein, models.KindCancelled, err)
		}

		rec, retryable, err := c.fetchOnce(ctx, ein)
		if err == nil {
			return rec
		}
		lastErr = err
		if !retryable {
			break
		}

		if attempt < c.maxAttempts-1 {
			if sleepErr := c.sleepBackoff(ctx, attempt); sleepErr != nil {
				return failed(ein, models.KindCancelled, sleepErr)
			}
		}
	}

	// API exhausted; try the HTML fallback once before giving up entirely.
	if rec, err := c.fetchHTMLFallback(ctx, ein); err == nil {
		return rec
	}

	return failed(ein, classifyErr(lastErr), lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, ein string) (models.EnrichmentRecord, bool, error) {
	url := fmt.Sprintf("%s/%s.json", c.apiBase, ein)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.EnrichmentRecord{}, false, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.EnrichmentRecord{}, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return models.EnrichmentRecord{}, true, fmt.Errorf("rate limited: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return models.EnrichmentRecord{}, true, fmt.Errorf("server error: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return models.EnrichmentRecord{}, false, fmt.Errorf("not found: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return models.EnrichmentRecord{}, false, fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.EnrichmentRecord{}, true, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.EnrichmentRecord{}, false, fmt.Errorf("malformed API response: %w", err)
	}

	return parsed.toRecord(ein, c.now()), false, nil
}

// throttle enforces the configured minimum inter-request delay and hourly
// ceiling. It blocks (respecting ctx) rather than failing the caller, since
// the rate limit is this client's own courtesy policy, not a hard quota
// error from the remote service.
func (c *Client) throttle(ctx context.Context) error {
	c.rateMu.Lock()
	now := c.now()

	if c.windowStart.IsZero() || now.Sub(c.windowStart) >= time.Hour {
		c.windowStart = now
		c.windowCount = 0
	}

	wait := time.Duration(0)
	if elapsed := now.Sub(c.lastRequest); !c.lastRequest.IsZero() && elapsed < c.minInterRequestDelay {
		wait = c.minInterRequestDelay - elapsed
	}
	if c.windowCount >= c.hourlyCeiling {
		untilWindowEnd := time.Hour - now.Sub(c.windowStart)
		if untilWindowEnd > wait {
			wait = untilWindowEnd
		}
	}
	c.windowCount++
	c.lastRequest = now.Add(wait)
	c.rateMu.Unlock()

	if wait <= 0 {
		return nil
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	backoff := c.baseBackoff << uint(attempt)
	jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
	delay := backoff/2 + jitter/2

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// failed builds a terminal-failure EnrichmentRecord. cause is accepted for
// call-site symmetry with the retry loop but is not carried on the record —
// FailureReason (a typed ErrorKind) is the caller-facing failure signal.
func failed(ein string, kind models.ErrorKind, cause error) models.EnrichmentRecord {
	_ = cause
	return models.EnrichmentRecord{
		EIN:           ein,
		Status:        models.EnrichmentFailed,
		FailureReason: kind,
		Source:        "api",
	}
}

func classifyErr(err error) models.ErrorKind {
	if err == nil {
		return models.KindTransient
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "rate limited"):
		return models.KindRateLimited
	case strings.Contains(msg, "not found"):
		return models.KindNotFound
	case strings.Contains(msg, "malformed"):
		return models.KindInvalidFiling
	default:
		return models.KindTransient
	}
}

// fetchHTMLFallback scrapes the organization's public profile page when the
// JSON API is exhausted — grounded in C4's contract that the HTML page
// sometimes carries accession/index links the JSON payload omits.
func (c *Client) fetchHTMLFallback(ctx context.Context, ein string) (models.EnrichmentRecord, error) {
	url := fmt.Sprintf("%s/%s", c.htmlBase, strings.ReplaceAll(ein, "-", ""))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.EnrichmentRecord{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.EnrichmentRecord{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.EnrichmentRecord{}, fmt.Errorf("HTML fallback HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.EnrichmentRecord{}, fmt.Errorf("parse HTML fallback: %w", err)
	}

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		return models.EnrichmentRecord{}, fmt.Errorf("HTML fallback page had no recognizable org name")
	}

	var filings []models.FilingSummary
	doc.Find("table.single-filing a, a.single-filing-link").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		filings = append(filings, models.FilingSummary{AccessionOrIndex: href, PDFURL: href})
	})

	return models.EnrichmentRecord{
		EIN:           ein,
		Status:        models.EnrichmentOK,
		OrgName:       name,
		LatestFilings: filings,
		FetchedAt:     c.now(),
		Source:        "html-fallback",
	}, nil
}
