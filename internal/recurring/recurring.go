// Package recurring computes occurrence dates for recurring transactions.
package recurring

import (
	"errors"
	"time"
)

// Interval is the repetition period of a recurring transaction.
type Interval string

const (
	Daily   Interval = "DAILY"
	Weekly  Interval = "WEEKLY"
	Monthly Interval = "MONTHLY"
	Yearly  Interval = "YEARLY"
)

// ErrUnknownInterval is returned for intervals other than the four above.
var ErrUnknownInterval = errors.New("unknown recurring interval")

// Valid reports whether i is a supported interval.
func (i Interval) Valid() bool {
	switch i {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// NextDate returns the occurrence that follows start.
//
// Monthly and yearly steps keep the day of month when it exists in the target
// month and otherwise clamp to that month's last day, so 2024-01-31 is followed
// by 2024-02-29 and 2024-02-29 by 2025-02-28. The time of day and location of
// start are preserved.
func NextDate(start time.Time, interval Interval) (time.Time, error) {
	switch interval {
	case Daily:
		return start.AddDate(0, 0, 1), nil
	case Weekly:
		return start.AddDate(0, 0, 7), nil
	case Monthly:
		return addMonthsClamped(start, 1), nil
	case Yearly:
		return addMonthsClamped(start, 12), nil
	}
	return start, ErrUnknownInterval
}

func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), t.Location()); day > last {
		day = last
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
