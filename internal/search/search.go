// Package search queries the GitHub code search API for workflow files that
// declare cron schedules.
//
// The client paginates results up to a configurable ceiling, spaces requests
// under GitHub's search budget, tracks the quota headers it is given, and
// pauses until reset instead of failing when a limit is exhausted. It is
// built for the sequential batch pipeline and is not safe for concurrent use.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for the tunables the upstream API may change out from under us.
const (
	DefaultPageSize   = 100
	DefaultMaxResults = 1000
	DefaultMaxRetries = 3

	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"

	acceptJSON = "application/vnd.github+json"
	acceptRaw  = "application/vnd.github.raw+json"

	// Authenticated code search allows 30 requests per minute.
	searchInterval = 2 * time.Second

	initialBackoff = time.Second
)

// Result is one workflow file reference discovered by code search.
type Result struct {
	Repository string `json:"repository"` // "owner/name"
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url,omitempty"`
}

// ResultSet is the bounded collection of results from one search run.
// Total carries the match count the API reported, which routinely exceeds
// the retrievable ceiling.
type ResultSet struct {
	Query   string   `json:"query"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

// Config carries the client tunables. Zero values fall back to defaults.
type Config struct {
	Token      string
	BaseURL    string
	PageSize   int
	MaxResults int
	MaxRetries int
}

type Client struct {
	http       *http.Client
	token      string
	baseURL    string
	pageSize   int
	maxResults int
	maxRetries int
	limiter    *rate.Limiter
	order      string
	rates      map[string]*rateState

	// Injection points so tests do not sleep for real.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	// Sorting by index age in a random direction makes repeated runs drift
	// through different slices of a match set far larger than the ceiling.
	order := "asc"
	if rand.Intn(2) == 1 {
		order = "desc"
	}

	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		token:      cfg.Token,
		baseURL:    cfg.BaseURL,
		pageSize:   cfg.PageSize,
		maxResults: cfg.MaxResults,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Every(searchInterval), 1),
		order:      order,
		rates:      make(map[string]*rateState),
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// BuildQuery returns the code search query for a scope. An empty scope means
// the general, unscoped search.
func BuildQuery(scope string) string {
	query := `"cron:" path:.github/workflows language:YAML`
	if scope != "" {
		query += " user:" + scope
	}
	return query
}

type searchResponse struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []searchItem `json:"items"`
}

type searchItem struct {
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// Search paginates the code search endpoint until pages are exhausted or
// the ceiling is reached. Failed pages are skipped after retries so partial
// results from other pages survive; the run only errors when every page
// failed and nothing was gathered.
func (c *Client) Search(ctx context.Context, scope string) (ResultSet, error) {
	query := BuildQuery(scope)
	set := ResultSet{Query: query}

	maxPages := (c.maxResults + c.pageSize - 1) / c.pageSize
	var lastErr error

	for page := 1; page <= maxPages && len(set.Results) < c.maxResults; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return set, err
		}

		body, err := c.get(ctx, c.searchURL(query, page), acceptJSON)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
				// The API refuses pages past its own result window; treat
				// as exhausted rather than failed.
				break
			}
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			slog.Warn("skipping search page", "page", page, "error", err)
			lastErr = err
			continue
		}

		var sr searchResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			slog.Warn("skipping undecodable search page", "page", page, "error", err)
			lastErr = err
			continue
		}

		set.Total = sr.TotalCount
		for _, item := range sr.Items {
			if len(set.Results) >= c.maxResults {
				break
			}
			set.Results = append(set.Results, Result{
				Repository: item.Repository.FullName,
				Path:       item.Path,
				HTMLURL:    item.HTMLURL,
			})
		}

		slog.Debug("search page gathered",
			"page", page, "items", len(sr.Items), "total", sr.TotalCount)

		if len(sr.Items) < c.pageSize {
			break
		}
	}

	if len(set.Results) == 0 && lastErr != nil {
		return set, fmt.Errorf("search gathered nothing: %w", lastErr)
	}
	return set, nil
}

func (c *Client) searchURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("per_page", strconv.Itoa(c.pageSize))
	v.Set("page", strconv.Itoa(page))
	v.Set("sort", "indexed")
	v.Set("order", c.order)
	return c.baseURL + "/search/code?" + v.Encode()
}
