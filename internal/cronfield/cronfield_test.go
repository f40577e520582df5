package cronfield_test

import (
	"errors"
	"testing"

	"github.com/glizzus/cron-census/internal/cronfield"
	"github.com/google/go-cmp/cmp"
)

func seq(lo, hi int) []int {
	values := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		values = append(values, v)
	}
	return values
}

func TestParseSuccess(t *testing.T) {
	table := []struct {
		expr string
		want cronfield.Expression
	}{
		{
			expr: "0 0 1 * *", // First of every month at midnight
			want: cronfield.Expression{
				Source:     "0 0 1 * *",
				Minute:     cronfield.Field{Values: []int{0}},
				Hour:       cronfield.Field{Values: []int{0}},
				DayOfMonth: cronfield.Field{Values: []int{1}},
				Month:      cronfield.Field{Values: seq(1, 12), Wildcard: true},
				DayOfWeek:  cronfield.Field{Values: seq(0, 6), Wildcard: true},
			},
		},
		{
			expr: "30 9-17 * * 1-5", // Half past each working hour, weekdays
			want: cronfield.Expression{
				Source:     "30 9-17 * * 1-5",
				Minute:     cronfield.Field{Values: []int{30}},
				Hour:       cronfield.Field{Values: seq(9, 17)},
				DayOfMonth: cronfield.Field{Values: seq(1, 31), Wildcard: true},
				Month:      cronfield.Field{Values: seq(1, 12), Wildcard: true},
				DayOfWeek:  cronfield.Field{Values: seq(1, 5)},
			},
		},
		{
			expr: "0 6 * * 1,3,5",
			want: cronfield.Expression{
				Source:     "0 6 * * 1,3,5",
				Minute:     cronfield.Field{Values: []int{0}},
				Hour:       cronfield.Field{Values: []int{6}},
				DayOfMonth: cronfield.Field{Values: seq(1, 31), Wildcard: true},
				Month:      cronfield.Field{Values: seq(1, 12), Wildcard: true},
				DayOfWeek:  cronfield.Field{Values: []int{1, 3, 5}},
			},
		},
		{
			// Mixed list of ranges and singletons, duplicates collapse.
			expr: "1-3,5,2 0-0 * * *",
			want: cronfield.Expression{
				Source:     "1-3,5,2 0-0 * * *",
				Minute:     cronfield.Field{Values: []int{1, 2, 3, 5}},
				Hour:       cronfield.Field{Values: []int{0}},
				DayOfMonth: cronfield.Field{Values: seq(1, 31), Wildcard: true},
				Month:      cronfield.Field{Values: seq(1, 12), Wildcard: true},
				DayOfWeek:  cronfield.Field{Values: seq(0, 6), Wildcard: true},
			},
		},
		{
			// Surrounding whitespace and inner runs of spaces are tolerated.
			expr: "  59   23  31 12 6  ",
			want: cronfield.Expression{
				Source:     "59 23 31 12 6",
				Minute:     cronfield.Field{Values: []int{59}},
				Hour:       cronfield.Field{Values: []int{23}},
				DayOfMonth: cronfield.Field{Values: []int{31}},
				Month:      cronfield.Field{Values: []int{12}},
				DayOfWeek:  cronfield.Field{Values: []int{6}},
			},
		},
	}

	for _, tc := range table {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := cronfield.Parse(tc.expr)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.expr, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.expr, diff)
			}
		})
	}
}

func TestParseListOrderIrrelevant(t *testing.T) {
	a, err := cronfield.Parse("1,2,3 * * * *")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	b, err := cronfield.Parse("3,1,2 * * * *")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if diff := cmp.Diff(a.Minute, b.Minute); diff != "" {
		t.Errorf("list order changed the resolved set (-a +b):\n%s", diff)
	}
}

func TestParseFailure(t *testing.T) {
	table := []struct {
		name string
		expr string
	}{
		{name: "empty", expr: ""},
		{name: "four fields", expr: "0 0 1 *"},
		{name: "six fields", expr: "0 0 1 * * 0"},
		{name: "minute out of range", expr: "60 * * * *"},
		{name: "hour out of range", expr: "* 24 * * *"},
		{name: "day of month zero", expr: "* * 0 * *"},
		{name: "month out of range", expr: "* * * 13 *"},
		{name: "day of week out of range", expr: "* * * * 7"},
		{name: "inverted range", expr: "0 17-9 * * *"},
		{name: "range endpoint out of range", expr: "0 20-25 * * *"},
		{name: "step value", expr: "*/5 * * * *"},
		{name: "step on range", expr: "0 9-17/2 * * *"},
		{name: "named month", expr: "0 0 1 JAN *"},
		{name: "trailing comma", expr: "1,2, * * * *"},
		{name: "wildcard in list", expr: "*,5 * * * *"},
		{name: "dangling range", expr: "5- * * * *"},
		{name: "double dash", expr: "1-2-3 * * * *"},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cronfield.Parse(tc.expr)
			if err == nil {
				t.Fatalf("Parse(%q) expected error but got result: %+v", tc.expr, got)
			}
			var parseErr *cronfield.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Parse(%q) error is %T, want *cronfield.ParseError", tc.expr, err)
			}
		})
	}
}

func TestDomainBounds(t *testing.T) {
	table := []struct {
		field    cronfield.FieldName
		min, max int
	}{
		{cronfield.FieldMinute, 0, 59},
		{cronfield.FieldHour, 0, 23},
		{cronfield.FieldDayOfMonth, 1, 31},
		{cronfield.FieldMonth, 1, 12},
		{cronfield.FieldDayOfWeek, 0, 6},
	}

	for _, tc := range table {
		min, max := cronfield.DomainBounds(tc.field)
		if min != tc.min || max != tc.max {
			t.Errorf("DomainBounds(%s) = (%d, %d), want (%d, %d)", tc.field, min, max, tc.min, tc.max)
		}
		if size := cronfield.DomainSize(tc.field); size != tc.max-tc.min+1 {
			t.Errorf("DomainSize(%s) = %d, want %d", tc.field, size, tc.max-tc.min+1)
		}
	}
}
