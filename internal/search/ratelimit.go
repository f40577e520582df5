package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// resetSlack pads every wait past the reported reset instant so a clock a
// little ahead of GitHub's does not retry into the same exhausted window.
const resetSlack = 5 * time.Second

// rateState is the explicit quota state for one API resource class
// (search and core count against separate budgets).
type rateState struct {
	remaining int
	reset     time.Time
	known     bool
}

// get issues one authenticated GET and owns all the ways it can go sideways:
// proactive quota waits, reactive rate-limit pauses, and bounded
// backoff-retries for transient failures. Rate-limit pauses do not count
// against the retry budget.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	resource := resourceOf(rawURL)
	attempts := 0
	backoff := initialBackoff

	// backOff sleeps before the next attempt, or returns the terminal
	// error once the retry budget is spent.
	backOff := func(cause error) error {
		attempts++
		if attempts > c.maxRetries {
			return fmt.Errorf("giving up after %d retries: %w", c.maxRetries, cause)
		}
		slog.Warn("transient failure, backing off",
			"url", rawURL, "attempt", attempts, "backoff", backoff, "error", cause)
		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
		return nil
	}

	for {
		if err := c.waitQuota(ctx, resource); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("X-GitHub-Api-Version", apiVersion)

		resp, err := c.http.Do(req)
		if err != nil {
			if err := backOff(err); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.noteRate(resource, resp.Header)

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return body, nil

		case resp.StatusCode == http.StatusOK:
			if err := backOff(readErr); err != nil {
				return nil, err
			}

		case rateLimited(resp):
			wait := c.rateLimitDelay(resp)
			slog.Warn("rate limit exhausted, pausing until reset",
				"resource", resource, "wait", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}

		case resp.StatusCode >= http.StatusInternalServerError:
			cause := &APIError{StatusCode: resp.StatusCode, URL: rawURL, Message: apiMessage(body)}
			if err := backOff(cause); err != nil {
				return nil, err
			}

		default:
			return nil, &APIError{StatusCode: resp.StatusCode, URL: rawURL, Message: apiMessage(body)}
		}
	}
}

// waitQuota blocks before a request when the tracked quota for the resource
// is already exhausted and the reset instant is still ahead.
func (c *Client) waitQuota(ctx context.Context, resource string) error {
	st := c.rates[resource]
	if st == nil || !st.known || st.remaining > 0 {
		return nil
	}
	now := c.now()
	if !now.Before(st.reset) {
		st.known = false
		return nil
	}
	wait := st.reset.Sub(now) + resetSlack
	slog.Warn("quota exhausted, pausing until reset", "resource", resource, "wait", wait)
	st.known = false
	return c.sleep(ctx, wait)
}

// noteRate records the quota headers from a response.
func (c *Client) noteRate(resource string, h http.Header) {
	remaining, err := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	resetEpoch, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}
	st := c.rates[resource]
	if st == nil {
		st = &rateState{}
		c.rates[resource] = st
	}
	st.remaining = remaining
	st.reset = time.Unix(resetEpoch, 0)
	st.known = true
}

func rateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	// A 403 is only a rate limit when the headers say so; otherwise it is
	// a permissions problem and retrying will not help.
	return resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != ""
}

func (c *Client) rateLimitDelay(resp *http.Response) time.Duration {
	if after := resp.Header.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if resetEpoch, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if wait := time.Unix(resetEpoch, 0).Sub(c.now()); wait > 0 {
			return wait + resetSlack
		}
	}
	return resetSlack
}

// resourceOf maps a request URL onto the rate-limit pool it draws from.
func resourceOf(rawURL string) string {
	if strings.Contains(rawURL, "/search/") {
		return "search"
	}
	return "core"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
