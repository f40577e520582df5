package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/glizzus/cron-census/internal/analyze"
	"github.com/glizzus/cron-census/internal/census"
	"github.com/glizzus/cron-census/internal/config"
	"github.com/glizzus/cron-census/internal/cronfield"
	"github.com/glizzus/cron-census/internal/generator"
	"github.com/glizzus/cron-census/internal/render"
	"github.com/glizzus/cron-census/internal/search"
	"github.com/glizzus/cron-census/internal/snapshot"
	"github.com/glizzus/cron-census/internal/util"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
)

func loadEnv() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
			return nil
		}
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

func newStore() (*snapshot.Store, *config.StorageConfig, error) {
	storage, err := config.NewStorageConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	return snapshot.NewStore(storage.DataDir), storage, nil
}

// newCensus assembles the pipeline. It fails before any network call when
// the GitHub token is missing.
func newCensus(store *snapshot.Store) (*census.Census, error) {
	github, err := config.NewGitHubConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load github config: %w", err)
	}
	searchCfg, err := config.NewSearchConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load search config: %w", err)
	}
	client := search.NewClient(search.Config{
		Token:      github.Token,
		BaseURL:    github.BaseURL,
		PageSize:   searchCfg.PageSize,
		MaxResults: searchCfg.MaxResults,
		MaxRetries: searchCfg.MaxRetries,
	})
	return census.New(client, store, &generator.UUIDV4Generator{}, searchCfg.MaxResults), nil
}

func runSample(c *cli.Context) (census.Summary, *snapshot.Store, *config.StorageConfig, error) {
	store, storage, err := newStore()
	if err != nil {
		return census.Summary{}, nil, nil, err
	}
	cen, err := newCensus(store)
	if err != nil {
		return census.Summary{}, nil, nil, err
	}
	summary, err := cen.Run(c.Context, c.Args().First())
	if err != nil {
		return census.Summary{}, nil, nil, err
	}
	return summary, store, storage, nil
}

func renderReport(store *snapshot.Store, storage *config.StorageConfig) error {
	snaps, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	if err := render.WriteHTMLFile(storage.ReportPath, snaps); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Printf("report written to %s\n", storage.ReportPath)
	return nil
}

func main() {
	app := &cli.App{
		Name:      "cron-census",
		Usage:     "Sample GitHub Actions cron schedules and chart when they fire",
		ArgsUsage: "[scope]",
		Action: func(c *cli.Context) error {
			if err := loadEnv(); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			summary, store, storage, err := runSample(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			printSummary(summary)
			if err := renderReport(store, storage); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "sample",
				Usage:     "Run the sampling pipeline without rendering the report",
				ArgsUsage: "[scope]",
				Action: func(c *cli.Context) error {
					if err := loadEnv(); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					summary, _, _, err := runSample(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					printSummary(summary)
					return nil
				},
			},
			{
				Name:  "render",
				Usage: "Re-render the HTML report from existing snapshots",
				Action: func(c *cli.Context) error {
					if err := loadEnv(); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					store, storage, err := newStore()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if err := renderReport(store, storage); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return nil
				},
			},
			{
				Name:      "report",
				Usage:     "Print a scope's distribution tables to stdout",
				ArgsUsage: "[scope]",
				Action: func(c *cli.Context) error {
					if err := loadEnv(); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					store, _, err := newStore()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					snap, err := store.Load(c.Args().First())
					if err != nil {
						return cli.Exit("failed to load snapshot: "+err.Error(), 1)
					}
					printReport(snap)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("cron-census: %v", err)
	}
}

func printSummary(summary census.Summary) {
	fmt.Printf("run %s: %d files sampled (%d reported matches), %d schedules, %d parse failures, %d files skipped in %s\n",
		summary.RunID,
		summary.Samples,
		summary.Total,
		summary.Expressions,
		summary.ParseFailures,
		summary.SkippedFiles,
		summary.Duration.Round(time.Millisecond),
	)
}

func printReport(snap snapshot.Snapshot) {
	scope := snap.Scope
	if scope == "" {
		scope = "general"
	}
	fmt.Printf("census %s: run %s, %d samples, %d schedules, %d parse failures\n\n",
		scope, snap.RunID, len(snap.Samples), snap.Aggregation.Expressions, snap.Aggregation.ParseFailures)

	dist := snap.Aggregation.Distribution
	printTable("Hour of day", dist.Hour, cronfield.FieldHour)
	printTable("Day of month", dist.DayOfMonth, cronfield.FieldDayOfMonth)
	printTable("Day of week", dist.DayOfWeek, cronfield.FieldDayOfWeek)
	printDescriptions(snap.Aggregation.Descriptions)
}

func printTable(title string, freq analyze.FrequencyTable, name cronfield.FieldName) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Bucket", "Count"})

	min, max := cronfield.DomainBounds(name)
	for v := min; v <= max; v++ {
		t.AppendRow(table.Row{strconv.Itoa(v), freq[v]})
	}
	t.Render()
	fmt.Println()
}

func printDescriptions(descriptions map[string]int) {
	if len(descriptions) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Schedules")
	t.AppendHeader(table.Row{"Schedule", "Count"})
	for _, description := range util.CountedKeys(descriptions) {
		t.AppendRow(table.Row{description, descriptions[description]})
	}
	t.Render()
}
