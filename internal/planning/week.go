package planning

import "time"

// WeekBounds returns the Monday and Sunday of the given ISO week at UTC
// midnight. January 4 always falls in ISO week 1.
func WeekBounds(year, week int) (time.Time, time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -offset)
	start := week1Monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

// WeeksIn reports the number of ISO weeks in a year (52 or 53).
func WeeksIn(year int) int {
	// December 28 is always in the last ISO week of its year.
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
