// Package analyze turns parsed cron expressions into the distributions the
// census reports on: one frequency table per cron field, plus a tally of
// human-readable schedule descriptions.
package analyze

import (
	"github.com/glizzus/cron-census/internal/cronfield"
)

// CronEntry is one extracted cron string and its parse outcome. Exactly one
// of Expression and ParseError is set.
type CronEntry struct {
	Source     string                `json:"source"`
	Expression *cronfield.Expression `json:"expression,omitempty"`
	ParseError string                `json:"parse_error,omitempty"`
}

// Sample is one workflow file discovered by search, with every cron string
// extracted from it. Immutable once built.
type Sample struct {
	Repository string      `json:"repository"`
	Path       string      `json:"path"`
	Crons      []CronEntry `json:"crons"`
}

// NewSample parses each extracted cron string into an entry. Parse failures
// are recorded on the entry rather than dropped, so the tally and the
// persisted artifact can account for them.
func NewSample(repository, path string, sources []string) Sample {
	sample := Sample{
		Repository: repository,
		Path:       path,
		Crons:      make([]CronEntry, 0, len(sources)),
	}
	for _, source := range sources {
		entry := CronEntry{Source: source}
		expr, err := cronfield.Parse(source)
		if err != nil {
			entry.ParseError = err.Error()
		} else {
			entry.Expression = &expr
		}
		sample.Crons = append(sample.Crons, entry)
	}
	return sample
}

// FrequencyTable counts occurrences per bucket. Every bucket of the field's
// domain is present, zero-valued buckets included, so an empty run still
// serializes a complete table.
type FrequencyTable map[int]int

// NewFrequencyTable returns a table with every bucket of the field's domain
// initialized to zero.
func NewFrequencyTable(name cronfield.FieldName) FrequencyTable {
	min, max := cronfield.DomainBounds(name)
	table := make(FrequencyTable, max-min+1)
	for v := min; v <= max; v++ {
		table[v] = 0
	}
	return table
}

func (t FrequencyTable) add(f cronfield.Field) {
	// Wildcards were already resolved to the full domain at parse time, so
	// plain iteration covers the "increments every bucket" behavior.
	for _, v := range f.Values {
		t[v]++
	}
}

// Total returns the sum of all bucket counts.
func (t FrequencyTable) Total() int {
	total := 0
	for _, count := range t {
		total += count
	}
	return total
}

// Max returns the largest single bucket count.
func (t FrequencyTable) Max() int {
	max := 0
	for _, count := range t {
		if count > max {
			max = count
		}
	}
	return max
}

// Distribution is the set of frequency tables, one per cron field.
type Distribution struct {
	Minute     FrequencyTable `json:"minute"`
	Hour       FrequencyTable `json:"hour"`
	DayOfMonth FrequencyTable `json:"day_of_month"`
	Month      FrequencyTable `json:"month"`
	DayOfWeek  FrequencyTable `json:"day_of_week"`
}

// NewDistribution returns a distribution with all buckets present at zero.
func NewDistribution() Distribution {
	return Distribution{
		Minute:     NewFrequencyTable(cronfield.FieldMinute),
		Hour:       NewFrequencyTable(cronfield.FieldHour),
		DayOfMonth: NewFrequencyTable(cronfield.FieldDayOfMonth),
		Month:      NewFrequencyTable(cronfield.FieldMonth),
		DayOfWeek:  NewFrequencyTable(cronfield.FieldDayOfWeek),
	}
}

// Aggregation is the result of tallying one run's samples.
type Aggregation struct {
	Distribution  Distribution   `json:"distribution"`
	Expressions   int            `json:"expressions"`
	ParseFailures int            `json:"parse_failures"`
	Descriptions  map[string]int `json:"descriptions"`
}

// Aggregate tallies every parsed expression across the samples. Each
// concrete value of each field increments its bucket once per expression.
// Entries that failed parsing only move the failure tally. Pure counting,
// so sample order never changes the result.
func Aggregate(samples []Sample) Aggregation {
	agg := Aggregation{
		Distribution: NewDistribution(),
		Descriptions: make(map[string]int),
	}
	for _, sample := range samples {
		for _, entry := range sample.Crons {
			if entry.Expression == nil {
				agg.ParseFailures++
				continue
			}
			expr := entry.Expression
			agg.Distribution.Minute.add(expr.Minute)
			agg.Distribution.Hour.add(expr.Hour)
			agg.Distribution.DayOfMonth.add(expr.DayOfMonth)
			agg.Distribution.Month.add(expr.Month)
			agg.Distribution.DayOfWeek.add(expr.DayOfWeek)
			agg.Descriptions[Describe(*expr)]++
			agg.Expressions++
		}
	}
	return agg
}
