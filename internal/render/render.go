// Package render turns persisted snapshots into a single static HTML
// report. No network, no parsing, no script: the document is pure
// HTML/CSS and self-contained.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/glizzus/cron-census/internal/analyze"
	"github.com/glizzus/cron-census/internal/cronfield"
	"github.com/glizzus/cron-census/internal/snapshot"
	"github.com/glizzus/cron-census/internal/util"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// topScheduleCount bounds the "most common schedules" table per scope.
const topScheduleCount = 10

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type reportData struct {
	GeneratedAt time.Time
	Scopes      []scopeView
}

type scopeView struct {
	Title         string
	RunID         string
	FinishedAt    time.Time
	Total         int
	Ceiling       int
	SampleCount   int
	Expressions   int
	ParseFailures int
	SkippedFiles  int
	Hours         []barView
	DaysOfMonth   []barView
	Weekdays      []barView
	TopSchedules  []scheduleView
}

type barView struct {
	Label string
	Count int
	Pct   int
}

type scheduleView struct {
	Description string
	Count       int
}

// WriteHTML renders the report for the given snapshots.
func WriteHTML(w io.Writer, snaps []snapshot.Snapshot) error {
	data := reportData{
		GeneratedAt: time.Now().UTC(),
		Scopes:      make([]scopeView, 0, len(snaps)),
	}
	for _, snap := range snaps {
		data.Scopes = append(data.Scopes, buildScope(snap))
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteHTMLFile renders the report to a file, creating parent directories
// as needed.
func WriteHTMLFile(path string, snaps []snapshot.Snapshot) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteHTML(f, snaps); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

func buildScope(snap snapshot.Snapshot) scopeView {
	title := "General census"
	if snap.Scope != "" {
		title = "Scope: " + snap.Scope
	}
	dist := snap.Aggregation.Distribution
	return scopeView{
		Title:         title,
		RunID:         snap.RunID,
		FinishedAt:    snap.FinishedAt,
		Total:         snap.Total,
		Ceiling:       snap.Ceiling,
		SampleCount:   len(snap.Samples),
		Expressions:   snap.Aggregation.Expressions,
		ParseFailures: snap.Aggregation.ParseFailures,
		SkippedFiles:  snap.SkippedFiles,
		Hours:         buildBars(dist.Hour, cronfield.FieldHour, func(v int) string { return fmt.Sprintf("%02d", v) }),
		DaysOfMonth:   buildBars(dist.DayOfMonth, cronfield.FieldDayOfMonth, strconv.Itoa),
		Weekdays:      buildBars(dist.DayOfWeek, cronfield.FieldDayOfWeek, func(v int) string { return weekdayLabels[v] }),
		TopSchedules:  topSchedules(snap.Aggregation.Descriptions),
	}
}

// buildBars walks the field's domain in order so the chart never depends
// on map iteration. Heights are percentages of the busiest bucket.
func buildBars(table analyze.FrequencyTable, name cronfield.FieldName, label func(int) string) []barView {
	min, max := cronfield.DomainBounds(name)
	peak := table.Max()
	bars := make([]barView, 0, max-min+1)
	for v := min; v <= max; v++ {
		count := table[v]
		pct := 0
		if peak > 0 {
			pct = count * 100 / peak
		}
		bars = append(bars, barView{Label: label(v), Count: count, Pct: pct})
	}
	return bars
}

func topSchedules(descriptions map[string]int) []scheduleView {
	views := make([]scheduleView, 0, len(descriptions))
	for _, description := range util.CountedKeys(descriptions) {
		views = append(views, scheduleView{Description: description, Count: descriptions[description]})
	}
	if len(views) > topScheduleCount {
		views = views[:topScheduleCount]
	}
	return views
}
