package services

import "time"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	location = resolveLocation(location)
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DaysBetween counts calendar days from start to end, ignoring clock time
// and DST shifts in the values' own locations.
func DaysBetween(start time.Time, end time.Time) int {
	startYear, startMonth, startDay := start.Date()
	endYear, endMonth, endDay := end.Date()
	from := time.Date(startYear, startMonth, startDay, 0, 0, 0, 0, time.UTC)
	to := time.Date(endYear, endMonth, endDay, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func sameDay(a, b time.Time) bool {
	return DaysBetween(a, b) == 0
}

func resolveLocation(location *time.Location) *time.Location {
	if location == nil {
		return time.UTC
	}
	return location
}
