package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// FileContent fetches the raw bytes of a file from a repository's default
// branch through the contents API. repository is the full "owner/name" form
// reported by search results.
func (c *Client) FileContent(ctx context.Context, repository, path string) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/repos/%s/contents/%s",
		c.baseURL, repository, escapePath(path))
	body, err := c.get(ctx, rawURL, acceptRaw)
	if err != nil {
		return nil, fmt.Errorf("fetching %s from %s: %w", path, repository, err)
	}
	return body, nil
}

// escapePath escapes each segment of a slash-separated file path so that
// the slashes survive as path separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
