// Package census wires search, extraction, parsing, aggregation and
// persistence into the batch pipeline: one run samples one scope and
// replaces that scope's snapshot. Every stage completes before the next
// begins; nothing here is concurrent.
package census

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glizzus/cron-census/internal/analyze"
	"github.com/glizzus/cron-census/internal/generator"
	"github.com/glizzus/cron-census/internal/search"
	"github.com/glizzus/cron-census/internal/snapshot"
	"github.com/glizzus/cron-census/internal/workflow"
)

// Searcher is the slice of the GitHub client the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, scope string) (search.ResultSet, error)
	FileContent(ctx context.Context, repository, path string) ([]byte, error)
}

var _ Searcher = (*search.Client)(nil)

// Census runs the sampling pipeline against one searcher and one store.
type Census struct {
	searcher Searcher
	store    *snapshot.Store
	ids      generator.Generator[string]
	ceiling  int

	now func() time.Time
}

func New(searcher Searcher, store *snapshot.Store, ids generator.Generator[string], ceiling int) *Census {
	return &Census{
		searcher: searcher,
		store:    store,
		ids:      ids,
		ceiling:  ceiling,
		now:      time.Now,
	}
}

// Summary is what one run reports back to the caller.
type Summary struct {
	RunID         string
	Scope         string
	Total         int
	Samples       int
	Expressions   int
	ParseFailures int
	SkippedFiles  int
	Duration      time.Duration
}

// Run executes the full pipeline for a scope: search everything first,
// then fetch and parse each workflow file, then aggregate and persist.
// Per-file failures are skipped and tallied; the run itself only fails
// when the search gathers nothing or the snapshot cannot be written.
func (c *Census) Run(ctx context.Context, scope string) (Summary, error) {
	scope = strings.ToLower(strings.TrimSpace(scope))
	started := c.now().UTC()

	runID, err := c.ids.Next()
	if err != nil {
		return Summary{}, fmt.Errorf("generate run id: %w", err)
	}
	slog.Info("census run starting", "run_id", runID, "scope", scope)

	set, err := c.searcher.Search(ctx, scope)
	if err != nil {
		return Summary{}, fmt.Errorf("search: %w", err)
	}
	slog.Info("search complete",
		"run_id", runID, "results", len(set.Results), "reported_total", set.Total)

	samples := make([]analyze.Sample, 0, len(set.Results))
	skipped := 0
	for _, result := range set.Results {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		content, err := c.searcher.FileContent(ctx, result.Repository, result.Path)
		if err != nil {
			slog.Warn("skipping workflow file",
				"repository", result.Repository, "path", result.Path, "error", err)
			skipped++
			continue
		}
		samples = append(samples, analyze.NewSample(result.Repository, result.Path, workflow.ExtractCrons(content)))
	}

	agg := analyze.Aggregate(samples)
	finished := c.now().UTC()

	snap := snapshot.Snapshot{
		RunID:        runID,
		Scope:        scope,
		Query:        set.Query,
		StartedAt:    started,
		FinishedAt:   finished,
		Total:        set.Total,
		Ceiling:      c.ceiling,
		SkippedFiles: skipped,
		Samples:      snapshot.AnnotateSamples(samples, finished),
		Aggregation:  agg,
	}
	if err := c.store.Write(snap); err != nil {
		return Summary{}, fmt.Errorf("persist snapshot: %w", err)
	}

	summary := Summary{
		RunID:         runID,
		Scope:         scope,
		Total:         set.Total,
		Samples:       len(samples),
		Expressions:   agg.Expressions,
		ParseFailures: agg.ParseFailures,
		SkippedFiles:  skipped,
		Duration:      finished.Sub(started),
	}
	slog.Info("census run finished",
		"run_id", runID,
		"samples", summary.Samples,
		"expressions", summary.Expressions,
		"parse_failures", summary.ParseFailures,
		"skipped_files", summary.SkippedFiles,
		"duration", summary.Duration)
	return summary, nil
}
