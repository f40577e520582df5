package search

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-retryable response from the GitHub API, such as a 404
// for a file deleted between search and fetch, or a 422 for a page past
// the search result window.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

var _ error = (*APIError)(nil)

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: %s for %s", http.StatusText(e.StatusCode), e.URL)
	}
	return fmt.Sprintf("github: %s for %s: %s", http.StatusText(e.StatusCode), e.URL, e.Message)
}

// apiMessage pulls the human-readable message out of a GitHub error body.
// Bodies that are not the documented JSON shape yield an empty string.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
