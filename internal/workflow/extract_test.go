package workflow_test

import (
	"testing"

	"github.com/glizzus/cron-census/internal/workflow"
	"github.com/google/go-cmp/cmp"
)

func TestExtractCrons(t *testing.T) {
	table := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name: "single schedule",
			content: `name: nightly
on:
  schedule:
    - cron: '0 0 1 * *'
jobs:
  build:
    runs-on: ubuntu-latest
`,
			want: []string{"0 0 1 * *"},
		},
		{
			name: "multiple schedules",
			content: `on:
  schedule:
    - cron: "0 6 * * *"
    - cron: "30 18 * * 5"
  push:
    branches: [main]
`,
			want: []string{"0 6 * * *", "30 18 * * 5"},
		},
		{
			name: "trigger key written as true",
			content: `true:
  schedule:
    - cron: '15 3 * * 0'
`,
			want: []string{"15 3 * * 0"},
		},
		{
			name: "bare schedule fragment",
			content: `schedule:
  - cron: '0 0 1 * *'
`,
			want: []string{"0 0 1 * *"},
		},
		{
			name: "no schedule trigger",
			content: `on:
  push:
    branches: [main]
jobs:
  test:
    runs-on: ubuntu-latest
`,
			want: nil,
		},
		{
			name:    "trigger is a plain event",
			content: "on: push\n",
			want:    nil,
		},
		{
			name:    "trigger is an event list",
			content: "on: [push, pull_request]\n",
			want:    nil,
		},
		{
			name: "schedule entry without cron key",
			content: `on:
  schedule:
    - interval: hourly
    - cron: '5 4 * * *'
`,
			want: []string{"5 4 * * *"},
		},
		{
			name:    "unrelated prose",
			content: "just some text about cron jobs\n",
			want:    nil,
		},
		{
			name:    "empty content",
			content: "",
			want:    nil,
		},
		{
			name: "malformed yaml falls back to line scan",
			content: "on:\n\tschedule:\n\t- cron: '0 6 * * *'\n",
			want: []string{"0 6 * * *"},
		},
		{
			name: "line scan strips trailing comment",
			content: "on:\n\tschedule:\n\t- cron: 0 12 * * 1 # monday lunch\n",
			want: []string{"0 12 * * 1"},
		},
		{
			name: "anchored cron value",
			content: `defaults: &everyday '0 8 * * *'
on:
  schedule:
    - cron: *everyday
`,
			want: []string{"0 8 * * *"},
		},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got := workflow.ExtractCrons([]byte(tc.content))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ExtractCrons() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
