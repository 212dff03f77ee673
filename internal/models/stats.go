package models

import (
	"time"

	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/pipeline"
)

const dateLayout = "2006-01-02"

// DailySeriesEntry is one day of the daily trips series. Weather means are
// null when no row on that day carried a value.
type DailySeriesEntry struct {
	Date          string   `json:"date"`
	TripCount     int      `json:"tripCount"`
	AvgTemp       *float64 `json:"avgTemp"`
	Precipitation *float64 `json:"precipitation"`
}

// NewDailySeriesEntries converts a daily series into its API representation.
func NewDailySeriesEntries(series pipeline.DailySeries) []DailySeriesEntry {
	entries := make([]DailySeriesEntry, 0, len(series))
	for _, e := range series {
		entries = append(entries, DailySeriesEntry{
			Date:          e.Date.Format(dateLayout),
			TripCount:     e.TripCount,
			AvgTemp:       e.AvgTemp,
			Precipitation: e.Precipitation,
		})
	}
	return entries
}

// RankedCountEntry is one label of a ranking.
type RankedCountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// NewRankedCountEntries converts ranked counts into their API representation.
func NewRankedCountEntries(ranked []pipeline.RankedCount) []RankedCountEntry {
	entries := make([]RankedCountEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, RankedCountEntry{Label: r.Label, Count: r.Count})
	}
	return entries
}

// StationBalanceEntry is one station's departure/arrival tally.
type StationBalanceEntry struct {
	Station string `json:"station"`
	Starts  int    `json:"starts"`
	Ends    int    `json:"ends"`
	Net     int    `json:"net"`
}

// NewStationBalanceEntries converts station balances into their API
// representation.
func NewStationBalanceEntries(balances []pipeline.StationBalance) []StationBalanceEntry {
	entries := make([]StationBalanceEntry, 0, len(balances))
	for _, b := range balances {
		entries = append(entries, StationBalanceEntry{
			Station: b.Station,
			Starts:  b.Starts,
			Ends:    b.Ends,
			Net:     b.Net,
		})
	}
	return entries
}

// WeatherPointEntry is one day of the weather comparison.
type WeatherPointEntry struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	TripCount int     `json:"tripCount"`
}

// NewWeatherPointEntries converts weather comparison points into their API
// representation.
func NewWeatherPointEntries(points []pipeline.WeatherPoint) []WeatherPointEntry {
	entries := make([]WeatherPointEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, WeatherPointEntry{
			Date:      p.Date.Format(dateLayout),
			Value:     p.Value,
			TripCount: p.TripCount,
		})
	}
	return entries
}

// MonthCountEntry is one calendar month's trip count.
type MonthCountEntry struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// HourCountEntry is one hour-of-day's trip count.
type HourCountEntry struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// TimeTrendsEntry bundles the monthly and hourly distributions.
type TimeTrendsEntry struct {
	Monthly  []MonthCountEntry `json:"monthly"`
	Hourly   []HourCountEntry  `json:"hourly"`
	PeakHour *int              `json:"peakHour"`
}

// NewTimeTrendsEntry converts monthly/hourly counts into their API
// representation.
func NewTimeTrendsEntry(monthly []pipeline.MonthCount, hourly []pipeline.HourCount, peakHour *int) TimeTrendsEntry {
	entry := TimeTrendsEntry{
		Monthly:  make([]MonthCountEntry, 0, len(monthly)),
		Hourly:   make([]HourCountEntry, 0, len(hourly)),
		PeakHour: peakHour,
	}
	for _, m := range monthly {
		entry.Monthly = append(entry.Monthly, MonthCountEntry{Month: m.Month.String(), Count: m.Count})
	}
	for _, h := range hourly {
		entry.Hourly = append(entry.Hourly, HourCountEntry{Hour: h.Hour, Count: h.Count})
	}
	return entry
}

// SummaryEntry is the headline statistics payload.
type SummaryEntry struct {
	TripCount           int      `json:"tripCount"`
	AvgTripsPerDay      *float64 `json:"avgTripsPerDay"`
	UniqueStartStations int      `json:"uniqueStartStations"`
	UniqueRoutes        int      `json:"uniqueRoutes"`
	AvgTemp             *float64 `json:"avgTemp"`
	AvgPrecipitation    *float64 `json:"avgPrecipitation"`
}

// NewSummaryEntry converts summary statistics into their API representation.
func NewSummaryEntry(stats pipeline.SummaryStats) SummaryEntry {
	return SummaryEntry{
		TripCount:           stats.TripCount,
		AvgTripsPerDay:      stats.AvgTripsPerDay,
		UniqueStartStations: stats.UniqueStartStations,
		UniqueRoutes:        stats.UniqueRoutes,
		AvgTemp:             stats.AvgTemp,
		AvgPrecipitation:    stats.AvgPrecipitation,
	}
}

// DroppedRowsEntry breaks down rows excluded during import, by reason.
type DroppedRowsEntry struct {
	BadTimestamp int `json:"badTimestamp"`
	BadNumeric   int `json:"badNumeric"`
	ShortRow     int `json:"shortRow"`
	Total        int `json:"total"`
}

// OverviewEntry describes the loaded dataset: size, column contract, date
// bounds, and how many source rows were excluded and why.
type OverviewEntry struct {
	RowCount          int              `json:"rowCount"`
	Columns           []string         `json:"columns"`
	MinDate           *string          `json:"minDate"`
	MaxDate           *string          `json:"maxDate"`
	DroppedRows       DroppedRowsEntry `json:"droppedRows"`
	SourceHash        string           `json:"sourceHash"`
	LastUpdated       string           `json:"lastUpdated"`
	TripCountStrategy string           `json:"tripCountStrategy"`
}

// NewOverviewEntry builds the dataset overview payload.
func NewOverviewEntry(ds *bikeshare.Dataset, lastUpdated time.Time, strategy pipeline.CountStrategy) OverviewEntry {
	entry := OverviewEntry{
		RowCount: len(ds.Records),
		Columns:  ds.Columns(),
		DroppedRows: DroppedRowsEntry{
			BadTimestamp: ds.Dropped.BadTimestamp,
			BadNumeric:   ds.Dropped.BadNumeric,
			ShortRow:     ds.Dropped.ShortRow,
			Total:        ds.Dropped.Total(),
		},
		SourceHash:        ds.SourceHash,
		LastUpdated:       lastUpdated.UTC().Format(time.RFC3339),
		TripCountStrategy: strategy.String(),
	}
	if !ds.MinDate.IsZero() {
		min := ds.MinDate.Format(dateLayout)
		entry.MinDate = &min
	}
	if !ds.MaxDate.IsZero() {
		max := ds.MaxDate.Format(dateLayout)
		entry.MaxDate = &max
	}
	return entry
}

// StationNearbyEntry is one station returned by the location search.
type StationNearbyEntry struct {
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// NewStationNearbyEntries converts spatial search results into their API
// representation.
func NewStationNearbyEntries(nearby []bikeshare.StationNearby) []StationNearbyEntry {
	entries := make([]StationNearbyEntry, 0, len(nearby))
	for _, n := range nearby {
		entries = append(entries, StationNearbyEntry{
			Name:           n.Name,
			Lat:            n.Lat,
			Lon:            n.Lon,
			DistanceMeters: n.DistanceMeters,
		})
	}
	return entries
}
