package pipeline

import "time"

// SummaryStats holds the headline figures across a filtered view. Pointer
// fields are nil when no row carried data to compute them from.
type SummaryStats struct {
	TripCount           int
	AvgTripsPerDay      *float64
	UniqueStartStations int
	UniqueRoutes        int
	AvgTemp             *float64
	AvgPrecipitation    *float64
}

// Summarize computes the headline statistics over the filtered rows. The
// trip count follows the given strategy; averages over weather columns use
// only rows with usable values.
func Summarize(rows Rows, strategy CountStrategy) SummaryStats {
	var stats SummaryStats

	days := make(map[time.Time]bool)
	stations := make(map[string]bool)
	routes := make(map[string]bool)
	var tempSum, prcpSum float64
	var tempN, prcpN int

	for _, rec := range rows.Records {
		if strategy.counts(rec) {
			stats.TripCount++
		}
		days[rec.Date()] = true
		if rec.StartStationName != "" {
			stations[rec.StartStationName] = true
		}
		if route := BuildRoute(rec); route != "" {
			routes[route] = true
		}
		if t := rec.AvgTemp(); t.Valid {
			tempSum += t.Float64
			tempN++
		}
		if rec.Precipitation.Valid {
			prcpSum += rec.Precipitation.Float64
			prcpN++
		}
	}

	stats.UniqueStartStations = len(stations)
	stats.UniqueRoutes = len(routes)
	if len(days) > 0 {
		avg := float64(stats.TripCount) / float64(len(days))
		stats.AvgTripsPerDay = &avg
	}
	if tempN > 0 {
		avg := tempSum / float64(tempN)
		stats.AvgTemp = &avg
	}
	if prcpN > 0 {
		avg := prcpSum / float64(prcpN)
		stats.AvgPrecipitation = &avg
	}
	return stats
}
