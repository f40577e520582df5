package e2e_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/glizzus/cron-census/e2e"
	"github.com/glizzus/cron-census/internal/census"
	"github.com/glizzus/cron-census/internal/generator"
	"github.com/glizzus/cron-census/internal/render"
	"github.com/glizzus/cron-census/internal/search"
	"github.com/glizzus/cron-census/internal/snapshot"
	"github.com/google/go-cmp/cmp"
)

func seq(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

func TestCensusPipeline(t *testing.T) {
	files := []e2e.WorkflowFile{
		{
			Repository: "acme/billing",
			Path:       ".github/workflows/monthly.yml",
			Content:    "on:\n  schedule:\n    - cron: '0 0 1 * *'\n  workflow_dispatch: {}\njobs: {}\n",
		},
		{
			Repository: "acme/ci",
			Path:       ".github/workflows/nightly.yml",
			Content:    "on:\n  schedule:\n    - cron: '0 3 * * *'\n    - cron: '*/15 * * * *'\n",
		},
		{
			Repository: "octo/site",
			Path:       ".github/workflows/push.yml",
			Content:    "on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n",
		},
		{
			Repository: "octo/archived",
			Path:       ".github/workflows/old.yml",
			Gone:       true,
		},
	}
	fake := e2e.NewFakeGitHub(t, files)

	client := search.NewClient(search.Config{Token: "e2e-token", BaseURL: fake.Server.URL})
	store := snapshot.NewStore(t.TempDir())
	cen := census.New(client, store, &generator.UUIDV4Generator{}, search.DefaultMaxResults)

	summary, err := cen.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if summary.Samples != 3 || summary.SkippedFiles != 1 {
		t.Errorf("Samples = %d, SkippedFiles = %d; want 3 and 1", summary.Samples, summary.SkippedFiles)
	}
	if summary.Expressions != 2 || summary.ParseFailures != 1 {
		t.Errorf("Expressions = %d, ParseFailures = %d; want 2 and 1", summary.Expressions, summary.ParseFailures)
	}
	if len(fake.Queries) == 0 || fake.Queries[0] != `"cron:" path:.github/workflows language:YAML` {
		t.Errorf("search queries = %v; want the workflow cron query", fake.Queries)
	}

	snap, err := store.Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	var monthly *snapshot.Sample
	for i := range snap.Samples {
		if snap.Samples[i].Repository == "acme/billing" {
			monthly = &snap.Samples[i]
		}
	}
	if monthly == nil || len(monthly.Crons) != 1 {
		t.Fatalf("billing sample = %+v; want exactly one cron entry", monthly)
	}
	expr := monthly.Crons[0].Expression
	if expr == nil {
		t.Fatalf("billing cron did not parse: %+v", monthly.Crons[0])
	}
	if diff := cmp.Diff([]int{0}, expr.Minute.Values); diff != "" {
		t.Errorf("minute mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, expr.Hour.Values); diff != "" {
		t.Errorf("hour mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, expr.DayOfMonth.Values); diff != "" {
		t.Errorf("day-of-month mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(seq(1, 12), expr.Month.Values); diff != "" || !expr.Month.Wildcard {
		t.Errorf("month should cover the full domain as a wildcard; diff:\n%s", diff)
	}
	if diff := cmp.Diff(seq(0, 6), expr.DayOfWeek.Values); diff != "" {
		t.Errorf("day-of-week mismatch (-want +got):\n%s", diff)
	}

	dist := snap.Aggregation.Distribution
	if dist.Hour[0] != 1 || dist.Hour[3] != 1 {
		t.Errorf("hour buckets 0,3 = %d,%d; want 1 and 1", dist.Hour[0], dist.Hour[3])
	}
	if dist.Minute[0] != 2 {
		t.Errorf("minute bucket 0 = %d; want both valid schedules tallied", dist.Minute[0])
	}
	if dist.DayOfMonth[1] != 2 || dist.DayOfMonth[15] != 1 {
		t.Errorf("day-of-month buckets 1,15 = %d,%d; want 2 and 1", dist.DayOfMonth[1], dist.DayOfMonth[15])
	}

	snaps, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, snaps); err != nil {
		t.Fatalf("WriteHTML() returned error: %v", err)
	}
	for _, want := range []string{"General census", "at 03:00 every day", "1 parse failures"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report is missing %q", want)
		}
	}
}

func TestCensusPipelineScoped(t *testing.T) {
	files := []e2e.WorkflowFile{
		{
			Repository: "acme/ci",
			Path:       ".github/workflows/nightly.yml",
			Content:    "on:\n  schedule:\n    - cron: '0 3 * * *'\n",
		},
	}
	fake := e2e.NewFakeGitHub(t, files)

	client := search.NewClient(search.Config{Token: "e2e-token", BaseURL: fake.Server.URL})
	store := snapshot.NewStore(t.TempDir())
	cen := census.New(client, store, &generator.UUIDV4Generator{}, search.DefaultMaxResults)

	summary, err := cen.Run(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if summary.Scope != "acme" {
		t.Errorf("Scope = %q; want normalized", summary.Scope)
	}
	if len(fake.Queries) == 0 || !strings.HasSuffix(fake.Queries[0], " user:acme") {
		t.Errorf("search queries = %v; want the scope qualifier appended", fake.Queries)
	}
	if _, err := store.Load("acme"); err != nil {
		t.Errorf("Load(acme) returned error: %v", err)
	}
}
