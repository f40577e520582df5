package schedule

import (
	"fmt"
	"time"

	"github.com/hashicorp/cronexpr"
)

// Upcoming returns the next n times a cron expression will fire, starting
// from now. Each time is in UTC.
func Upcoming(cron string, n int) ([]time.Time, error) {
	return UpcomingAfter(cron, time.Now().UTC(), n)
}

// UpcomingAfter returns the next n fire times strictly after a reference
// instant, in UTC. It returns an error if the cron expression is invalid
// or if n is less than 1.
func UpcomingAfter(cron string, after time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be greater than 0")
	}
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return nil, err
	}
	return expr.NextN(after.UTC(), uint(n)), nil
}
