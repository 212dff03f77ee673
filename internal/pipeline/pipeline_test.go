package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash.nycbikeshare.org/internal/bikeshare"
)

const sampleCSV = `ride_id,started_at,start_station_name,end_station_name,member_casual,TMAX,TMIN,PRCP
R1,2022-01-01 08:00:00,StationA,StationB,member,40,20,0.0
R2,2022-01-01 09:00:00,StationB,StationA,casual,40,20,0.0
R3,2022-01-02 10:00:00,StationA,StationC,member,50,30,0.1
`

func newTestDataset(t *testing.T, csvData string) *bikeshare.Dataset {
	t.Helper()
	ds, err := bikeshare.ParseCSV([]byte(csvData))
	require.NoError(t, err)
	return ds
}

func allRows(t *testing.T, ds *bikeshare.Dataset) Rows {
	t.Helper()
	dr, err := NewDateRange(ds.MinDate, ds.MaxDate)
	require.NoError(t, err)
	rows, err := FilterRows(ds, dr, RiderAll)
	require.NoError(t, err)
	return rows
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	require.NoError(t, err)
	return d
}

func TestNewDateRange(t *testing.T) {
	start := time.Date(2022, 1, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2022, 1, 2, 3, 0, 0, 0, time.UTC)

	dr, err := NewDateRange(start, end)
	require.NoError(t, err)
	assert.Equal(t, day(t, "2022-01-01"), dr.Start)
	assert.Equal(t, day(t, "2022-01-02"), dr.End)

	_, err = NewDateRange(end, start)
	assert.Error(t, err)

	// single-day range is valid
	dr, err = NewDateRange(start, start)
	require.NoError(t, err)
	assert.True(t, dr.Contains(day(t, "2022-01-01")))
	assert.False(t, dr.Contains(day(t, "2022-01-02")))
}

func TestParseRiderFilter(t *testing.T) {
	for input, want := range map[string]RiderFilter{
		"":       RiderAll,
		"all":    RiderAll,
		"member": RiderMember,
		"Casual": RiderCasual,
	} {
		got, err := ParseRiderFilter(input)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseRiderFilter("subscriber")
	assert.Error(t, err)
}

func TestFilterRows(t *testing.T) {
	ds := newTestDataset(t, sampleCSV)

	rows := allRows(t, ds)
	require.Len(t, rows.Records, 3)
	// original order preserved
	assert.Equal(t, "R1", rows.Records[0].RideID)
	assert.Equal(t, "R2", rows.Records[1].RideID)
	assert.Equal(t, "R3", rows.Records[2].RideID)

	dr, err := NewDateRange(day(t, "2022-01-01"), day(t, "2022-01-02"))
	require.NoError(t, err)

	casual, err := FilterRows(ds, dr, RiderCasual)
	require.NoError(t, err)
	require.Len(t, casual.Records, 1)
	assert.Equal(t, "R2", casual.Records[0].RideID)

	secondDay, err := NewDateRange(day(t, "2022-01-02"), day(t, "2022-01-02"))
	require.NoError(t, err)
	narrowed, err := FilterRows(ds, secondDay, RiderAll)
	require.NoError(t, err)
	require.Len(t, narrowed.Records, 1)
	assert.Equal(t, "R3", narrowed.Records[0].RideID)

	// windows outside the data yield empty rows, not an error
	empty, err := NewDateRange(day(t, "2023-06-01"), day(t, "2023-06-30"))
	require.NoError(t, err)
	none, err := FilterRows(ds, empty, RiderAll)
	require.NoError(t, err)
	assert.Empty(t, none.Records)
}

func TestFilterRowsIsIdempotent(t *testing.T) {
	ds := newTestDataset(t, sampleCSV)
	dr, err := NewDateRange(ds.MinDate, ds.MaxDate)
	require.NoError(t, err)

	first, err := FilterRows(ds, dr, RiderMember)
	require.NoError(t, err)
	second, err := FilterRows(ds, dr, RiderMember)
	require.NoError(t, err)
	assert.Equal(t, first.Records, second.Records)
}

func TestFilterRowsMissingColumns(t *testing.T) {
	noTimestamps := newTestDataset(t, "ride_id,start_station_name\nR1,StationA\n")
	dr, err := NewDateRange(day(t, "2022-01-01"), day(t, "2022-01-02"))
	require.NoError(t, err)

	_, err = FilterRows(noTimestamps, dr, RiderAll)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColStartedAt}, missing.Columns)

	noRiderType := newTestDataset(t, "ride_id,started_at\nR1,2022-01-01 08:00:00\n")
	_, err = FilterRows(noRiderType, dr, RiderCasual)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColMemberCasual}, missing.Columns)

	// the same dataset filters fine when no rider predicate is applied
	rows, err := FilterRows(noRiderType, dr, RiderAll)
	require.NoError(t, err)
	assert.Len(t, rows.Records, 1)
}

func TestFilterRowsSkipsUnparseableTimestamps(t *testing.T) {
	ds := newTestDataset(t, `ride_id,started_at
R1,2022-01-01 08:00:00
R2,not-a-timestamp
R3,2022-01-01 09:00:00
`)
	assert.Equal(t, 1, ds.Dropped.BadTimestamp)

	rows := allRows(t, ds)
	require.Len(t, rows.Records, 2)
	assert.Equal(t, "R1", rows.Records[0].RideID)
	assert.Equal(t, "R3", rows.Records[1].RideID)
}

func TestAggregateDaily(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	series := AggregateDaily(rows, CountRideIDs)
	require.Len(t, series, 2)

	assert.Equal(t, day(t, "2022-01-01"), series[0].Date)
	assert.Equal(t, 2, series[0].TripCount)
	require.NotNil(t, series[0].AvgTemp)
	assert.InDelta(t, 30.0, *series[0].AvgTemp, 1e-9)
	require.NotNil(t, series[0].Precipitation)
	assert.InDelta(t, 0.0, *series[0].Precipitation, 1e-9)

	assert.Equal(t, day(t, "2022-01-02"), series[1].Date)
	assert.Equal(t, 1, series[1].TripCount)
	require.NotNil(t, series[1].AvgTemp)
	assert.InDelta(t, 40.0, *series[1].AvgTemp, 1e-9)
}

func TestAggregateDailyEmptyAndNilWeather(t *testing.T) {
	ds := newTestDataset(t, sampleCSV)
	empty, err := NewDateRange(day(t, "2023-06-01"), day(t, "2023-06-30"))
	require.NoError(t, err)
	rows, err := FilterRows(ds, empty, RiderAll)
	require.NoError(t, err)
	assert.Empty(t, AggregateDaily(rows, CountRideIDs))

	// no weather columns at all still produces counts, means stay nil
	bare := newTestDataset(t, "ride_id,started_at\nR1,2022-01-01 08:00:00\n")
	series := AggregateDaily(allRows(t, bare), CountRideIDs)
	require.Len(t, series, 1)
	assert.Equal(t, 1, series[0].TripCount)
	assert.Nil(t, series[0].AvgTemp)
	assert.Nil(t, series[0].Precipitation)
}

func TestCountStrategy(t *testing.T) {
	withIDs := allRows(t, newTestDataset(t, sampleCSV))
	assert.Equal(t, CountRideIDs, CountStrategyFor(withIDs))

	noIDs := allRows(t, newTestDataset(t, "started_at\n2022-01-01 08:00:00\n2022-01-01 09:00:00\n"))
	assert.Equal(t, CountRows, CountStrategyFor(noIDs))

	series := AggregateDaily(noIDs, CountStrategyFor(noIDs))
	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].TripCount)

	// empty ride_id values are not counted under the ride_id strategy
	blankIDs := allRows(t, newTestDataset(t, "ride_id,started_at\nR1,2022-01-01 08:00:00\n,2022-01-01 09:00:00\n"))
	series = AggregateDaily(blankIDs, CountRideIDs)
	require.Len(t, series, 1)
	assert.Equal(t, 1, series[0].TripCount)
}

func TestTopN(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	top, err := TopN(rows, bikeshare.ColStartStationName, 1, false)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, RankedCount{Label: "StationA", Count: 2}, top[0])

	// ties keep first-seen order: end stations B, A, C each appear once
	ends, err := TopN(rows, bikeshare.ColEndStationName, 2, false)
	require.NoError(t, err)
	require.Len(t, ends, 2)
	assert.Equal(t, "StationB", ends[0].Label)
	assert.Equal(t, "StationA", ends[1].Label)

	// ascending puts the least frequent first
	asc, err := TopN(rows, bikeshare.ColStartStationName, 2, true)
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, RankedCount{Label: "StationB", Count: 1}, asc[0])
	assert.Equal(t, RankedCount{Label: "StationA", Count: 2}, asc[1])

	// n larger than the distinct labels returns them all
	all, err := TopN(rows, bikeshare.ColStartStationName, 10, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTopNErrors(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	_, err := TopN(rows, bikeshare.ColStartStationName, 0, false)
	assert.ErrorIs(t, err, ErrInvalidN)

	var missing *MissingColumnError
	_, err = TopN(rows, "bike_type", 5, false)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"bike_type"}, missing.Columns)

	noNames := allRows(t, newTestDataset(t, "ride_id,started_at\nR1,2022-01-01 08:00:00\n"))
	_, err = TopN(noNames, bikeshare.ColStartStationName, 5, false)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColStartStationName}, missing.Columns)
}

func TestTopNSkipsEmptyValues(t *testing.T) {
	rows := allRows(t, newTestDataset(t, `ride_id,started_at,start_station_name
R1,2022-01-01 08:00:00,StationA
R2,2022-01-01 09:00:00,
R3,2022-01-01 10:00:00,StationA
`))
	top, err := TopN(rows, bikeshare.ColStartStationName, 5, false)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, RankedCount{Label: "StationA", Count: 2}, top[0])
}

func TestRouteCounts(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	routes, err := RouteCounts(rows, 5)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "StationA → StationB", routes[0].Label)
	assert.Equal(t, "StationB → StationA", routes[1].Label)
	assert.Equal(t, "StationA → StationC", routes[2].Label)
	for _, r := range routes {
		assert.Equal(t, 1, r.Count)
	}
}

func TestRouteCountsSkipsPartialRows(t *testing.T) {
	rows := allRows(t, newTestDataset(t, `ride_id,started_at,start_station_name,end_station_name
R1,2022-01-01 08:00:00,StationA,StationB
R2,2022-01-01 09:00:00,StationA,
R3,2022-01-01 10:00:00,,StationB
`))
	routes, err := RouteCounts(rows, 5)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, RankedCount{Label: "StationA → StationB", Count: 1}, routes[0])

	noEnds := allRows(t, newTestDataset(t, "started_at,start_station_name\n2022-01-01 08:00:00,StationA\n"))
	var missing *MissingColumnError
	_, err = RouteCounts(noEnds, 5)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColEndStationName}, missing.Columns)
}

func TestComputeStationBalance(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	balances, err := ComputeStationBalance(rows)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	// ordered by net ascending: C loses a bike, B breaks even, A gains one
	assert.Equal(t, StationBalance{Station: "StationC", Starts: 0, Ends: 1, Net: -1}, balances[0])
	assert.Equal(t, StationBalance{Station: "StationB", Starts: 1, Ends: 1, Net: 0}, balances[1])
	assert.Equal(t, StationBalance{Station: "StationA", Starts: 2, Ends: 1, Net: 1}, balances[2])

	// every counted row contributes one start and one end, so nets cancel
	total := 0
	for _, b := range balances {
		total += b.Net
	}
	assert.Zero(t, total)
}

func TestComputeStationBalanceMissingColumns(t *testing.T) {
	rows := allRows(t, newTestDataset(t, "ride_id,started_at\nR1,2022-01-01 08:00:00\n"))
	var missing *MissingColumnError
	_, err := ComputeStationBalance(rows)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColStartStationName, bikeshare.ColEndStationName}, missing.Columns)
}

func TestMonthlyCounts(t *testing.T) {
	rows := allRows(t, newTestDataset(t, `started_at
2022-01-05 08:00:00
2022-01-20 08:00:00
2022-07-04 08:00:00
`))
	months := MonthlyCounts(rows)
	require.Len(t, months, 12)
	assert.Equal(t, MonthCount{Month: time.January, Count: 2}, months[0])
	assert.Equal(t, MonthCount{Month: time.July, Count: 1}, months[6])
	assert.Equal(t, MonthCount{Month: time.December, Count: 0}, months[11])
}

func TestHourlyCountsAndPeakHour(t *testing.T) {
	rows := allRows(t, newTestDataset(t, `started_at
2022-01-01 08:15:00
2022-01-01 08:45:00
2022-01-01 17:30:00
`))
	hours := HourlyCounts(rows)
	require.Len(t, hours, 24)
	assert.Equal(t, HourCount{Hour: 0, Count: 0}, hours[0])
	assert.Equal(t, HourCount{Hour: 8, Count: 2}, hours[8])
	assert.Equal(t, HourCount{Hour: 17, Count: 1}, hours[17])

	peak := PeakHour(rows)
	require.NotNil(t, peak)
	assert.Equal(t, 8, *peak)
}

func TestPeakHourEmptyAndTies(t *testing.T) {
	ds := newTestDataset(t, sampleCSV)
	empty, err := NewDateRange(day(t, "2023-06-01"), day(t, "2023-06-30"))
	require.NoError(t, err)
	rows, err := FilterRows(ds, empty, RiderAll)
	require.NoError(t, err)
	assert.Nil(t, PeakHour(rows))

	// ties resolve to the earliest hour
	tied := allRows(t, newTestDataset(t, "started_at\n2022-01-01 06:00:00\n2022-01-01 21:00:00\n"))
	peak := PeakHour(tied)
	require.NotNil(t, peak)
	assert.Equal(t, 6, *peak)
}

func TestWeatherComparison(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	temp, err := WeatherComparison(rows, Temperature, CountRideIDs)
	require.NoError(t, err)
	require.Len(t, temp, 2)
	assert.Equal(t, day(t, "2022-01-01"), temp[0].Date)
	assert.InDelta(t, 30.0, temp[0].Value, 1e-9)
	assert.Equal(t, 2, temp[0].TripCount)
	assert.InDelta(t, 40.0, temp[1].Value, 1e-9)
	assert.Equal(t, 1, temp[1].TripCount)

	prcp, err := WeatherComparison(rows, Precipitation, CountRideIDs)
	require.NoError(t, err)
	require.Len(t, prcp, 2)
	assert.InDelta(t, 0.0, prcp[0].Value, 1e-9)
	assert.InDelta(t, 0.1, prcp[1].Value, 1e-9)
}

func TestWeatherComparisonMissingColumns(t *testing.T) {
	rows := allRows(t, newTestDataset(t, "ride_id,started_at,TMAX\nR1,2022-01-01 08:00:00,40\n"))

	var missing *MissingColumnError
	_, err := WeatherComparison(rows, Temperature, CountRideIDs)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColTMin}, missing.Columns)

	_, err = WeatherComparison(rows, Precipitation, CountRideIDs)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{bikeshare.ColPrcp}, missing.Columns)
}

func TestWeatherComparisonSkipsDaysWithoutValues(t *testing.T) {
	rows := allRows(t, newTestDataset(t, `started_at,TMAX,TMIN
2022-01-01 08:00:00,40,20
2022-01-02 08:00:00,,
`))
	points, err := WeatherComparison(rows, Temperature, CountRows)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, day(t, "2022-01-01"), points[0].Date)
}

func TestSummarize(t *testing.T) {
	rows := allRows(t, newTestDataset(t, sampleCSV))

	stats := Summarize(rows, CountRideIDs)
	assert.Equal(t, 3, stats.TripCount)
	require.NotNil(t, stats.AvgTripsPerDay)
	assert.InDelta(t, 1.5, *stats.AvgTripsPerDay, 1e-9)
	assert.Equal(t, 2, stats.UniqueStartStations)
	assert.Equal(t, 3, stats.UniqueRoutes)
	require.NotNil(t, stats.AvgTemp)
	assert.InDelta(t, (30.0+30.0+40.0)/3, *stats.AvgTemp, 1e-9)
	require.NotNil(t, stats.AvgPrecipitation)
	assert.InDelta(t, 0.1/3, *stats.AvgPrecipitation, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	ds := newTestDataset(t, sampleCSV)
	empty, err := NewDateRange(day(t, "2023-06-01"), day(t, "2023-06-30"))
	require.NoError(t, err)
	rows, err := FilterRows(ds, empty, RiderAll)
	require.NoError(t, err)

	stats := Summarize(rows, CountRideIDs)
	assert.Zero(t, stats.TripCount)
	assert.Nil(t, stats.AvgTripsPerDay)
	assert.Zero(t, stats.UniqueStartStations)
	assert.Zero(t, stats.UniqueRoutes)
	assert.Nil(t, stats.AvgTemp)
	assert.Nil(t, stats.AvgPrecipitation)
}
