package heyreach

import "time"

// maxWeeks bounds week generation so a bad date range can't loop for
// years of windows.
const maxWeeks = 52

// PartitionWeeks splits [start, end] into Saturday-to-Friday weeks.
// The first week is anchored at the Saturday on or before start. Weeks
// whose Friday falls before the range start are skipped, and emitted
// boundaries are clipped to the range. Generation stops silently after
// maxWeeks windows.
func PartitionWeeks(start, end time.Time) []Week {
	var weeks []Week

	firstSaturday := start.AddDate(0, 0, -daysSinceSaturday(start.Weekday()))

	weekStart := firstSaturday
	for count := 0; !weekStart.After(end) && count < maxWeeks; count++ {
		weekEnd := weekStart.AddDate(0, 0, 6)

		if !weekEnd.Before(start) {
			effectiveStart := weekStart
			if effectiveStart.Before(start) {
				effectiveStart = start
			}
			effectiveEnd := weekEnd
			if effectiveEnd.After(end) {
				effectiveEnd = end
			}

			weeks = append(weeks, Week{
				Start: effectiveStart,
				End:   effectiveEnd,
				Key:   weekEnd.Format("2006-01-02"),
			})
		}

		weekStart = weekStart.AddDate(0, 0, 7)
	}

	return weeks
}

// daysSinceSaturday returns how many days back from the given weekday
// the preceding Saturday lies.
func daysSinceSaturday(d time.Weekday) int {
	switch d {
	case time.Saturday:
		return 0
	case time.Sunday:
		return 1
	default:
		// Monday through Friday
		return int(d) + 1
	}
}
