// Package pipeline implements the filter-and-aggregate operations every
// dashboard view is derived from. Each operation is a pure function of a
// dataset snapshot and its parameters: no operation retains state, and
// identical inputs always produce identical derived tables, including order.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bikedash.nycbikeshare.org/internal/bikeshare"
)

// ErrInvalidN is returned when a ranking is requested with n < 1.
var ErrInvalidN = errors.New("n must be at least 1")

// MissingColumnError reports that the dataset lacks columns required for the
// requested aggregation. It is detected before aggregation begins; no partial
// derived table is ever produced alongside it.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Columns, ", "))
}

// DateRange is an inclusive [Start, End] pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a DateRange from two timestamps, flooring both to the
// calendar day (UTC). Start must not be after End.
func NewDateRange(start, end time.Time) (DateRange, error) {
	s := floorDay(start)
	e := floorDay(end)
	if s.After(e) {
		return DateRange{}, fmt.Errorf("invalid date range: start %s after end %s",
			s.Format("2006-01-02"), e.Format("2006-01-02"))
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether day (a UTC midnight) falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

func floorDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RiderFilter is the categorical predicate over membership type.
type RiderFilter int

const (
	RiderAll RiderFilter = iota
	RiderMember
	RiderCasual
)

func (f RiderFilter) String() string {
	switch f {
	case RiderMember:
		return "member"
	case RiderCasual:
		return "casual"
	default:
		return "all"
	}
}

// ParseRiderFilter parses a rider filter value; the empty string means All.
func ParseRiderFilter(s string) (RiderFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return RiderAll, nil
	case "member":
		return RiderMember, nil
	case "casual":
		return RiderCasual, nil
	default:
		return RiderAll, fmt.Errorf("unknown rider filter %q", s)
	}
}

func (f RiderFilter) matches(riderType string) bool {
	switch f {
	case RiderMember:
		return riderType == "member"
	case RiderCasual:
		return riderType == "casual"
	default:
		return true
	}
}

// WeatherVariable selects which weather column feeds comparison views.
type WeatherVariable int

const (
	Temperature WeatherVariable = iota
	Precipitation
)

func (v WeatherVariable) String() string {
	if v == Precipitation {
		return "precipitation"
	}
	return "temperature"
}

// ParseWeatherVariable parses a weather variable name; the empty string means
// Temperature.
func ParseWeatherVariable(s string) (WeatherVariable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "temperature":
		return Temperature, nil
	case "precipitation":
		return Precipitation, nil
	default:
		return Temperature, fmt.Errorf("unknown weather variable %q", s)
	}
}

// CountStrategy selects the counting key for daily and summary counts: plain
// row counting, or counting non-empty ride_id values when that column exists.
// The choice is explicit so callers (and tests) can target each strategy.
type CountStrategy int

const (
	CountRows CountStrategy = iota
	CountRideIDs
)

func (s CountStrategy) String() string {
	if s == CountRideIDs {
		return "ride_id"
	}
	return "rows"
}

// CountStrategyFor picks CountRideIDs when the dataset carries a ride_id
// column and falls back to row counting otherwise.
func CountStrategyFor(rows Rows) CountStrategy {
	if rows.HasColumn(bikeshare.ColRideID) {
		return CountRideIDs
	}
	return CountRows
}

func (s CountStrategy) counts(rec bikeshare.TripRecord) bool {
	if s == CountRideIDs {
		return rec.RideID != ""
	}
	return true
}

// Rows is a filtered view over a dataset snapshot: the retained records plus
// the source column contract, so downstream operations can validate their
// required columns. Construct it with FilterRows.
type Rows struct {
	Records []bikeshare.TripRecord

	dataset *bikeshare.Dataset
}

// HasColumn reports whether the underlying dataset carried the named column.
func (r Rows) HasColumn(name string) bool {
	return r.dataset.HasColumn(name)
}

func (r Rows) requireColumns(names ...string) error {
	if missing := r.dataset.MissingColumns(names...); len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// FilterRows retains rows whose start date falls within dateRange (inclusive)
// and whose rider category matches riderFilter. Rows without a parseable
// start timestamp are excluded. Original row order is preserved and the
// output is always a subset of the input.
func FilterRows(ds *bikeshare.Dataset, dateRange DateRange, riderFilter RiderFilter) (Rows, error) {
	required := []string{bikeshare.ColStartedAt}
	if riderFilter != RiderAll {
		required = append(required, bikeshare.ColMemberCasual)
	}
	if missing := ds.MissingColumns(required...); len(missing) > 0 {
		return Rows{}, &MissingColumnError{Columns: missing}
	}

	var kept []bikeshare.TripRecord
	for _, rec := range ds.Records {
		if !rec.HasStartedAt() {
			continue
		}
		if !dateRange.Contains(rec.Date()) {
			continue
		}
		if !riderFilter.matches(rec.RiderType) {
			continue
		}
		kept = append(kept, rec)
	}

	return Rows{Records: kept, dataset: ds}, nil
}
