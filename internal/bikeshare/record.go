// Package bikeshare owns the trip-and-weather dataset: loading it from a CSV
// source, the column contract, and the in-memory snapshot every aggregation
// works from.
package bikeshare

import (
	"database/sql"
	"sort"
	"time"
)

// Column names recognized in the source CSV. Weather columns use the NOAA
// daily-summary names the joined dataset ships with.
const (
	ColRideID           = "ride_id"
	ColStartedAt        = "started_at"
	ColStartStationID   = "start_station_id"
	ColStartStationName = "start_station_name"
	ColEndStationID     = "end_station_id"
	ColEndStationName   = "end_station_name"
	ColStartLat         = "start_lat"
	ColStartLng         = "start_lng"
	ColEndLat           = "end_lat"
	ColEndLng           = "end_lng"
	ColMemberCasual     = "member_casual"
	ColTMax             = "TMAX"
	ColTMin             = "TMIN"
	ColPrcp             = "PRCP"
)

// TripRecord is one row of the source table. Fields that failed to parse (or
// were absent from the source) carry Valid=false / zero values; rows are never
// mutated after load.
type TripRecord struct {
	RideID           string
	StartedAt        time.Time
	StartStationID   string
	StartStationName string
	EndStationID     string
	EndStationName   string
	StartLat         sql.NullFloat64
	StartLng         sql.NullFloat64
	EndLat           sql.NullFloat64
	EndLng           sql.NullFloat64
	RiderType        string
	TMax             sql.NullFloat64
	TMin             sql.NullFloat64
	Precipitation    sql.NullFloat64
}

// HasStartedAt reports whether the start timestamp parsed successfully.
func (r TripRecord) HasStartedAt() bool {
	return !r.StartedAt.IsZero()
}

// Date returns the start timestamp floored to the calendar day (UTC).
func (r TripRecord) Date() time.Time {
	return time.Date(r.StartedAt.Year(), r.StartedAt.Month(), r.StartedAt.Day(), 0, 0, 0, 0, time.UTC)
}

// Hour returns the hour of day (0-23) of the start timestamp.
func (r TripRecord) Hour() int {
	return r.StartedAt.Hour()
}

// AvgTemp derives the per-row average temperature as (TMAX+TMIN)/2,
// invalid when either side is missing.
func (r TripRecord) AvgTemp() sql.NullFloat64 {
	if !r.TMax.Valid || !r.TMin.Valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: (r.TMax.Float64 + r.TMin.Float64) / 2, Valid: true}
}

// DropCounts tallies source rows excluded during import, by reason.
// Exclusion is silent per row but the totals stay observable.
type DropCounts struct {
	BadTimestamp int
	BadNumeric   int
	ShortRow     int
}

// Total returns the number of rows excluded for any reason.
func (d DropCounts) Total() int {
	return d.BadTimestamp + d.BadNumeric + d.ShortRow
}

// Dataset is the immutable, columnar dataset loaded once per session.
// All derived tables are recomputed from it on every request.
type Dataset struct {
	Records []TripRecord

	columns map[string]bool

	// Dropped counts rows excluded during parsing; see DropCounts.
	Dropped DropCounts

	// MinDate and MaxDate are the observed start-date bounds (UTC midnight),
	// zero when no row carries a parseable timestamp.
	MinDate time.Time
	MaxDate time.Time

	// SourceHash is the SHA-256 of the raw source bytes, used to skip
	// re-importing identical data.
	SourceHash string
}

// HasColumn reports whether the source carried the named column.
func (d *Dataset) HasColumn(name string) bool {
	return d.columns[name]
}

// MissingColumns returns, in input order, the requested columns absent from
// the source.
func (d *Dataset) MissingColumns(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !d.columns[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Columns returns the recognized source columns in sorted order.
func (d *Dataset) Columns() []string {
	cols := make([]string, 0, len(d.columns))
	for name := range d.columns {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}
