package tripdb

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

var exportHeader = []string{
	"ride_id", "started_at",
	"start_station_id", "start_station_name",
	"end_station_id", "end_station_name",
	"start_lat", "start_lng", "end_lat", "end_lng",
	"member_casual", "TMAX", "TMIN", "PRCP",
}

// ExportCSVGz streams the stored trips to w as a gzip-compressed CSV using
// the same column names the source dataset ships with.
func (c *Client) ExportCSVGz(ctx context.Context, w io.Writer) error {
	rows, err := c.Queries.ListTrips(ctx)
	if err != nil {
		return fmt.Errorf("error listing trips for export: %w", err)
	}
	defer func() { _ = rows.Close() }()

	gz := gzip.NewWriter(w)
	cw := csv.NewWriter(gz)

	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for rows.Next() {
		var t Trip
		err := rows.Scan(
			&t.RideID, &t.StartedAt,
			&t.StartStationID, &t.StartStationName,
			&t.EndStationID, &t.EndStationName,
			&t.StartLat, &t.StartLng, &t.EndLat, &t.EndLng,
			&t.RiderType, &t.Tmax, &t.Tmin, &t.Prcp)
		if err != nil {
			return fmt.Errorf("error scanning trip for export: %w", err)
		}

		record := []string{
			nullString(t.RideID),
			nullTime(t.StartedAt),
			nullString(t.StartStationID),
			nullString(t.StartStationName),
			nullString(t.EndStationID),
			nullString(t.EndStationName),
			nullFloat(t.StartLat),
			nullFloat(t.StartLng),
			nullFloat(t.EndLat),
			nullFloat(t.EndLng),
			nullString(t.RiderType),
			nullFloat(t.Tmax),
			nullFloat(t.Tmin),
			nullFloat(t.Prcp),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return gz.Close()
}

func nullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func nullTime(v sql.NullTime) string {
	if !v.Valid {
		return ""
	}
	return v.Time.UTC().Format("2006-01-02 15:04:05")
}
