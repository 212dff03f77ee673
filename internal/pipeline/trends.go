package pipeline

import "time"

// MonthCount is one calendar month's trip count.
type MonthCount struct {
	Month time.Month
	Count int
}

// MonthlyCounts tallies trips per calendar month. The result always has 12
// entries, January through December, months without trips at zero.
func MonthlyCounts(rows Rows) []MonthCount {
	var counts [12]int
	for _, rec := range rows.Records {
		counts[int(rec.StartedAt.Month())-1]++
	}
	out := make([]MonthCount, 12)
	for i := range out {
		out[i] = MonthCount{Month: time.Month(i + 1), Count: counts[i]}
	}
	return out
}

// HourCount is one hour-of-day's trip count.
type HourCount struct {
	Hour  int
	Count int
}

// HourlyCounts tallies trips per hour of day. The result always has 24
// entries, hour 0 through 23, hours without trips at zero.
func HourlyCounts(rows Rows) []HourCount {
	var counts [24]int
	for _, rec := range rows.Records {
		counts[rec.Hour()]++
	}
	out := make([]HourCount, 24)
	for i := range out {
		out[i] = HourCount{Hour: i, Count: counts[i]}
	}
	return out
}

// PeakHour returns the hour of day with the most trips, nil when there are no
// rows. Ties resolve to the earliest hour.
func PeakHour(rows Rows) *int {
	if len(rows.Records) == 0 {
		return nil
	}
	hourly := HourlyCounts(rows)
	peak := 0
	for _, hc := range hourly {
		if hc.Count > hourly[peak].Count {
			peak = hc.Hour
		}
	}
	return &peak
}
