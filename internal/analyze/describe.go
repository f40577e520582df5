package analyze

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/glizzus/cron-census/internal/cronfield"
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var monthNames = [13]string{
	1: "January", 2: "February", 3: "March", 4: "April",
	5: "May", 6: "June", 7: "July", 8: "August",
	9: "September", 10: "October", 11: "November", 12: "December",
}

// Describe renders a compact human summary of when an expression fires,
// such as "at 06:30 every day" or "hourly at minute 15 on weekdays".
// Identical schedules written differently still collapse to one phrase
// because the summary is built from the resolved value sets.
func Describe(expr cronfield.Expression) string {
	out := timeOfDay(expr.Minute, expr.Hour)
	day := dayPart(expr.DayOfMonth, expr.DayOfWeek)
	// "every day" only adds information after a single concrete time.
	single := expr.Minute.Single() && expr.Hour.Single()
	if day != "" && (day != "every day" || single) {
		out += " " + day
	}
	if month := monthPart(expr.Month); month != "" {
		out += " " + month
	}
	return out
}

func timeOfDay(minute, hour cronfield.Field) string {
	switch {
	case minute.Wildcard && hour.Wildcard:
		return "every minute"
	case minute.Wildcard:
		return fmt.Sprintf("every minute of %s %s",
			plural("hour", len(hour.Values)), formatSet(hour))
	case hour.Wildcard:
		return fmt.Sprintf("hourly at %s %s",
			plural("minute", len(minute.Values)), formatSet(minute))
	case minute.Single() && hour.Single():
		return fmt.Sprintf("at %02d:%02d", hour.Values[0], minute.Values[0])
	default:
		return fmt.Sprintf("at %s %s past %s %s",
			plural("minute", len(minute.Values)), formatSet(minute),
			plural("hour", len(hour.Values)), formatSet(hour))
	}
}

func dayPart(dayOfMonth, dayOfWeek cronfield.Field) string {
	if dayOfMonth.Wildcard && dayOfWeek.Wildcard {
		return "every day"
	}

	var parts []string
	if !dayOfMonth.Wildcard {
		parts = append(parts, fmt.Sprintf("on %s %s of the month",
			plural("day", len(dayOfMonth.Values)), formatSet(dayOfMonth)))
	}
	if !dayOfWeek.Wildcard {
		parts = append(parts, "on "+weekdays(dayOfWeek))
	}
	return strings.Join(parts, " and ")
}

func weekdays(f cronfield.Field) string {
	if slices.Equal(f.Values, []int{1, 2, 3, 4, 5}) {
		return "weekdays"
	}
	if slices.Equal(f.Values, []int{0, 6}) {
		return "weekends"
	}
	names := make([]string, 0, len(f.Values))
	for _, v := range f.Values {
		names = append(names, weekdayNames[v])
	}
	return strings.Join(names, ", ")
}

func monthPart(month cronfield.Field) string {
	if month.Wildcard {
		return ""
	}
	names := make([]string, 0, len(month.Values))
	for _, v := range month.Values {
		names = append(names, monthNames[v])
	}
	return "in " + strings.Join(names, ", ")
}

// formatSet renders sorted values compactly, folding runs of three or more
// consecutive values back into ranges: {0,30} -> "0,30", {9..17} -> "9-17".
func formatSet(f cronfield.Field) string {
	var b strings.Builder
	values := f.Values
	for i := 0; i < len(values); {
		j := i
		for j+1 < len(values) && values[j+1] == values[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteString(",")
		}
		switch {
		case j-i >= 2:
			b.WriteString(strconv.Itoa(values[i]))
			b.WriteString("-")
			b.WriteString(strconv.Itoa(values[j]))
			i = j + 1
		default:
			b.WriteString(strconv.Itoa(values[i]))
			i++
		}
	}
	return b.String()
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
