package util

import "time"

// AddMonths returns the date n months after t, clamping the day to the last
// day of the target month (e.g. Jan 31 + 1 month = Feb 28/29). Schedule due
// dates use this so a month-end start date never spills into the following
// month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + n
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)

	last := LastDayOfMonth(targetYear, targetMonth)
	if day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(targetYear, targetMonth, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// LastDayOfMonth returns the number of days in the given month
func LastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
