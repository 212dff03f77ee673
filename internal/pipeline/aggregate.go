package pipeline

import (
	"database/sql"
	"sort"
	"time"

	"bikedash.nycbikeshare.org/internal/bikeshare"
)

// DailyEntry is one day of the daily series. AvgTemp and Precipitation are
// nil when no row on that day carried a usable value for them.
type DailyEntry struct {
	Date          time.Time
	TripCount     int
	AvgTemp       *float64
	Precipitation *float64
}

// DailySeries is ordered by date, strictly ascending, one entry per distinct
// day present in the input. An empty input yields an empty series.
type DailySeries []DailyEntry

type dailyAcc struct {
	count   int
	tempSum float64
	tempN   int
	prcpSum float64
	prcpN   int
}

// AggregateDaily groups rows by calendar day and produces trip counts plus
// per-day weather means. Weather columns are optional here; days without
// weather data get nil means rather than an error.
func AggregateDaily(rows Rows, strategy CountStrategy) DailySeries {
	byDay := make(map[time.Time]*dailyAcc)
	for _, rec := range rows.Records {
		day := rec.Date()
		acc := byDay[day]
		if acc == nil {
			acc = &dailyAcc{}
			byDay[day] = acc
		}
		if strategy.counts(rec) {
			acc.count++
		}
		if t := rec.AvgTemp(); t.Valid {
			acc.tempSum += t.Float64
			acc.tempN++
		}
		if rec.Precipitation.Valid {
			acc.prcpSum += rec.Precipitation.Float64
			acc.prcpN++
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := make(DailySeries, 0, len(days))
	for _, day := range days {
		acc := byDay[day]
		entry := DailyEntry{Date: day, TripCount: acc.count}
		if acc.tempN > 0 {
			mean := acc.tempSum / float64(acc.tempN)
			entry.AvgTemp = &mean
		}
		if acc.prcpN > 0 {
			mean := acc.prcpSum / float64(acc.prcpN)
			entry.Precipitation = &mean
		}
		series = append(series, entry)
	}
	return series
}

// WeatherPoint pairs one day's mean weather value with that day's trip count.
type WeatherPoint struct {
	Date      time.Time
	Value     float64
	TripCount int
}

// WeatherComparison produces per-day (weather value, trip count) points for
// the requested variable. The variable's source columns must be present;
// days where no row carries a usable value are omitted. Points are ordered
// by date ascending.
func WeatherComparison(rows Rows, variable WeatherVariable, strategy CountStrategy) ([]WeatherPoint, error) {
	var required []string
	if variable == Precipitation {
		required = []string{bikeshare.ColPrcp}
	} else {
		required = []string{bikeshare.ColTMax, bikeshare.ColTMin}
	}
	if err := rows.requireColumns(required...); err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		n     int
		count int
	}
	byDay := make(map[time.Time]*acc)
	for _, rec := range rows.Records {
		value, ok := weatherValue(rec, variable)
		if !ok {
			continue
		}
		day := rec.Date()
		a := byDay[day]
		if a == nil {
			a = &acc{}
			byDay[day] = a
		}
		a.sum += value
		a.n++
		if strategy.counts(rec) {
			a.count++
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]WeatherPoint, 0, len(days))
	for _, day := range days {
		a := byDay[day]
		points = append(points, WeatherPoint{
			Date:      day,
			Value:     a.sum / float64(a.n),
			TripCount: a.count,
		})
	}
	return points, nil
}

func weatherValue(rec bikeshare.TripRecord, variable WeatherVariable) (float64, bool) {
	var v sql.NullFloat64
	if variable == Precipitation {
		v = rec.Precipitation
	} else {
		v = rec.AvgTemp()
	}
	return v.Float64, v.Valid
}
