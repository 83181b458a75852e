package market

import "time"

// DateFormat is the day-granular layout used in logs and errors.
const DateFormat = "2006-01-02"

// Day truncates t to its calendar day, at midnight UTC. The calendar day is
// taken in t's own location so a simulated clock in local time rolls over at
// local midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
