package cronfield

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldName identifies one of the five positions of a cron expression.
type FieldName string

const (
	FieldMinute     FieldName = "minute"
	FieldHour       FieldName = "hour"
	FieldDayOfMonth FieldName = "day-of-month"
	FieldMonth      FieldName = "month"
	FieldDayOfWeek  FieldName = "day-of-week"
)

type domain struct {
	name FieldName
	min  int
	max  int
}

// Field positions in cron order with their valid value ranges.
// Day-of-week uses 0-6 with 0 meaning Sunday, as GitHub Actions does.
var domains = [5]domain{
	{FieldMinute, 0, 59},
	{FieldHour, 0, 23},
	{FieldDayOfMonth, 1, 31},
	{FieldMonth, 1, 12},
	{FieldDayOfWeek, 0, 6},
}

// DomainBounds returns the inclusive value range for a field position.
func DomainBounds(name FieldName) (min, max int) {
	for _, d := range domains {
		if d.name == name {
			return d.min, d.max
		}
	}
	return 0, 0
}

// DomainSize returns the number of valid values for a field position.
func DomainSize(name FieldName) int {
	min, max := DomainBounds(name)
	return max - min + 1
}

func (d domain) all() []int {
	values := make([]int, 0, d.max-d.min+1)
	for v := d.min; v <= d.max; v++ {
		values = append(values, v)
	}
	return values
}

func (d domain) contains(v int) bool {
	return v >= d.min && v <= d.max
}

// Field is one resolved cron field: the concrete values it covers, sorted
// ascending with no duplicates. Wildcard records whether the source token
// was "*", which downstream reporting cares about even though the values
// alone drive aggregation.
type Field struct {
	Values   []int `json:"values"`
	Wildcard bool  `json:"wildcard,omitempty"`
}

// Single reports whether the field covers exactly one value.
func (f Field) Single() bool {
	return len(f.Values) == 1
}

// Expression is a parsed five-field cron expression with every field
// resolved to its concrete value set.
type Expression struct {
	Source     string `json:"source"`
	Minute     Field  `json:"minute"`
	Hour       Field  `json:"hour"`
	DayOfMonth Field  `json:"day_of_month"`
	Month      Field  `json:"month"`
	DayOfWeek  Field  `json:"day_of_week"`
}

// ParseError explains why a cron expression was rejected. Field is empty
// when the expression as a whole is malformed rather than one field.
type ParseError struct {
	Expr   string
	Field  FieldName
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cron %q: %s", e.Expr, e.Reason)
	}
	return fmt.Sprintf("cron %q: %s field: %s", e.Expr, e.Field, e.Reason)
}

var _ error = (*ParseError)(nil)

const allowedChars = "0123456789,*/-"

// Parse parses a whitespace-separated five-field cron expression into
// concrete value sets. Wildcards expand to the full field domain, lists
// union their elements, and ranges are inclusive. Step syntax (*/N) is
// rejected as unsupported so callers can tally it as a parse failure.
func Parse(expr string) (Expression, error) {
	tokens := strings.Fields(expr)
	if len(tokens) != 5 {
		return Expression{}, &ParseError{
			Expr:   expr,
			Reason: fmt.Sprintf("expected 5 fields, got %d", len(tokens)),
		}
	}

	var fields [5]Field
	for i, token := range tokens {
		field, reason := parseField(token, domains[i])
		if reason != "" {
			return Expression{}, &ParseError{Expr: expr, Field: domains[i].name, Reason: reason}
		}
		fields[i] = field
	}

	return Expression{
		Source:     strings.Join(tokens, " "),
		Minute:     fields[0],
		Hour:       fields[1],
		DayOfMonth: fields[2],
		Month:      fields[3],
		DayOfWeek:  fields[4],
	}, nil
}

// parseField resolves one token against its domain. It returns a non-empty
// reason string instead of an error so Parse can attach the field name.
func parseField(token string, d domain) (Field, string) {
	for _, r := range token {
		if !strings.ContainsRune(allowedChars, r) {
			return Field{}, fmt.Sprintf("invalid character %q", r)
		}
	}

	// Step values show up in the wild ("*/15") but resolving them to sets
	// is out of scope. Reject loudly so the failure is tallied.
	if strings.ContainsRune(token, '/') {
		return Field{}, "step values are not supported"
	}

	if token == "*" {
		return Field{Values: d.all(), Wildcard: true}, ""
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(token, ",") {
		if part == "" {
			return Field{}, "empty list element"
		}
		if strings.ContainsRune(part, '*') {
			return Field{}, "wildcard must stand alone"
		}
		if err := resolveAtom(part, d, seen); err != "" {
			return Field{}, err
		}
	}

	values := make([]int, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Ints(values)
	return Field{Values: values}, ""
}

// resolveAtom handles a single list element: either a number or an
// inclusive range N-M.
func resolveAtom(part string, d domain, seen map[int]struct{}) string {
	if !strings.ContainsRune(part, '-') {
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Sprintf("invalid number %q", part)
		}
		if !d.contains(n) {
			return fmt.Sprintf("value %d out of range %d-%d", n, d.min, d.max)
		}
		seen[n] = struct{}{}
		return ""
	}

	if strings.Count(part, "-") > 1 {
		return fmt.Sprintf("invalid range %q", part)
	}
	bounds := strings.SplitN(part, "-", 2)
	if bounds[0] == "" || bounds[1] == "" {
		return fmt.Sprintf("invalid range %q", part)
	}
	lo, err := strconv.Atoi(bounds[0])
	if err != nil {
		return fmt.Sprintf("invalid range start %q", bounds[0])
	}
	hi, err := strconv.Atoi(bounds[1])
	if err != nil {
		return fmt.Sprintf("invalid range end %q", bounds[1])
	}
	if lo > hi {
		return fmt.Sprintf("inverted range %d-%d", lo, hi)
	}
	if !d.contains(lo) || !d.contains(hi) {
		return fmt.Sprintf("range %d-%d out of range %d-%d", lo, hi, d.min, d.max)
	}
	for v := lo; v <= hi; v++ {
		seen[v] = struct{}{}
	}
	return ""
}
