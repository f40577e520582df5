// Package snapshot persists one census run per scope as a JSON artifact
// and loads artifacts back for rendering and reporting.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/glizzus/cron-census/internal/analyze"
	"github.com/glizzus/cron-census/internal/schedule"
)

// nextRunCount is how many upcoming fire times get attached to each
// parsed expression when a snapshot is assembled.
const nextRunCount = 3

// Cron is one extracted cron entry annotated with its upcoming fire times.
type Cron struct {
	analyze.CronEntry
	NextRuns []time.Time `json:"next_runs,omitempty"`
}

// Sample mirrors an analyzed sample with annotated cron entries.
type Sample struct {
	Repository string `json:"repository"`
	Path       string `json:"path"`
	Crons      []Cron `json:"crons"`
}

// Snapshot is the complete artifact of one run. Re-running a scope
// replaces its snapshot wholesale.
type Snapshot struct {
	RunID        string              `json:"run_id"`
	Scope        string              `json:"scope,omitempty"`
	Query        string              `json:"query"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	Total        int                 `json:"total"`
	Ceiling      int                 `json:"ceiling"`
	SkippedFiles int                 `json:"skipped_files"`
	Samples      []Sample            `json:"samples"`
	Aggregation  analyze.Aggregation `json:"aggregation"`
}

// AnnotateSamples attaches the next few fire times (UTC, relative to after)
// to every parsed expression. Entries that failed parsing pass through
// unannotated.
func AnnotateSamples(samples []analyze.Sample, after time.Time) []Sample {
	out := make([]Sample, 0, len(samples))
	for _, sample := range samples {
		annotated := Sample{
			Repository: sample.Repository,
			Path:       sample.Path,
			Crons:      make([]Cron, 0, len(sample.Crons)),
		}
		for _, entry := range sample.Crons {
			cron := Cron{CronEntry: entry}
			if entry.Expression != nil {
				runs, err := schedule.UpcomingAfter(entry.Source, after, nextRunCount)
				if err == nil {
					cron.NextRuns = runs
				}
			}
			annotated.Crons = append(annotated.Crons, cron)
		}
		out = append(out, annotated)
	}
	return out
}

// FileName maps a scope to its artifact name: general.json for the
// unscoped census, <scope>.json otherwise. Scopes are lowercased so the
// same account never splits across files on case alone.
func FileName(scope string) (string, error) {
	if scope == "" {
		return "general.json", nil
	}
	scope = strings.ToLower(scope)
	if strings.ContainsAny(scope, `/\`) || scope == "." || scope == ".." {
		return "", fmt.Errorf("scope %q cannot name a snapshot file", scope)
	}
	return scope + ".json", nil
}

// Store reads and writes snapshot artifacts under one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Write persists a snapshot for its scope, replacing any prior artifact.
// The artifact is written to a temp file and renamed into place, so an
// interrupted run never corrupts the previous snapshot.
func (s *Store) Write(snap Snapshot) error {
	name, err := FileName(snap.Scope)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for one scope. A missing artifact surfaces the
// underlying not-exist error so callers can tell "never sampled" apart
// from a broken file.
func (s *Store) Load(scope string) (Snapshot, error) {
	name, err := FileName(scope)
	if err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot %s: %w", name, err)
	}
	return snap, nil
}

// LoadAll reads every snapshot in the store, the general census first and
// the rest ordered by scope. An empty or missing directory yields nothing.
func (s *Store) LoadAll() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", name, err)
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %s: %w", name, err)
		}
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Scope < snaps[j].Scope
	})
	return snaps, nil
}
