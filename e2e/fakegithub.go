package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// WorkflowFile is one fixture the fake GitHub serves: it shows up in code
// search results and, unless Gone, its content is fetchable.
type WorkflowFile struct {
	Repository string
	Path       string
	Content    string
	Gone       bool
}

// FakeGitHub is an in-process stand-in for the two GitHub endpoints the
// pipeline touches: code search and repository contents.
type FakeGitHub struct {
	Server *httptest.Server

	// Queries records the q parameter of every search request.
	Queries []string

	files []WorkflowFile
}

func NewFakeGitHub(t *testing.T, files []WorkflowFile) *FakeGitHub {
	t.Helper()
	f := &FakeGitHub{files: files}

	mux := http.NewServeMux()
	mux.HandleFunc("/search/code", f.searchCode)
	mux.HandleFunc("/repos/", f.contents)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeGitHub) searchCode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.Queries = append(f.Queries, q.Get("q"))

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = 30
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(f.files) {
		start = len(f.files)
	}
	if end > len(f.files) {
		end = len(f.files)
	}

	type repository struct {
		FullName string `json:"full_name"`
	}
	type item struct {
		Path       string     `json:"path"`
		HTMLURL    string     `json:"html_url"`
		Repository repository `json:"repository"`
	}
	items := make([]item, 0, end-start)
	for _, file := range f.files[start:end] {
		items = append(items, item{
			Path:       file.Path,
			HTMLURL:    "https://github.com/" + file.Repository + "/blob/main/" + file.Path,
			Repository: repository{FullName: file.Repository},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total_count":        len(f.files),
		"incomplete_results": false,
		"items":              items,
	})
}

func (f *FakeGitHub) contents(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/repos/")
	repo, path, ok := strings.Cut(rest, "/contents/")
	if ok {
		for _, file := range f.files {
			if file.Repository == repo && file.Path == path && !file.Gone {
				w.Write([]byte(file.Content))
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message": "Not Found"}`))
}
