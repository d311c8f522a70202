package engine

import "time"

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// SameDay compares calendar days in b's location.
func SameDay(a, b time.Time) bool {
	return DaysBetween(a, b) == 0
}

// DaysBetween counts calendar days from `from` to `to`, both read in to's
// location. It is unaffected by DST because it compares dates, not durations.
func DaysBetween(from, to time.Time) int {
	y1, m1, d1 := from.In(to.Location()).Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// ExceedDays is the number of whole days now is past the deadline day.
// Zero or negative means not overdue; no deadline yields 0.
func ExceedDays(expiresAt *time.Time, now time.Time) int {
	if expiresAt == nil {
		return 0
	}
	return DaysBetween(*expiresAt, now)
}

// DeadlineFor resolves a relative duration into an absolute end-of-day deadline.
func DeadlineFor(claimedAt time.Time, durationDays int) time.Time {
	return EndOfDay(claimedAt.AddDate(0, 0, durationDays))
}
